package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLine snapshots one purchased (product, variant, size) at checkout time.
// Price and Discount are frozen here; later catalog edits do not touch them.
type OrderLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Size      int       `gorm:"column:size;not null"`
	Quantity  int       `gorm:"column:quantity;not null;check:quantity >= 1"`
	Price     int       `gorm:"column:price;not null;check:price >= 0"`
	Discount  int       `gorm:"column:discount;not null;check:discount >= 0 AND discount <= 100"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
