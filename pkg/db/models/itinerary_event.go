package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItineraryEvent is one entry in an order's delivery log. Events are only ever
// inserted; there is no update or delete path.
type ItineraryEvent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Caption   string    `gorm:"column:caption"`
	Time      time.Time `gorm:"column:time;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (e *ItineraryEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
