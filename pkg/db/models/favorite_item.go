package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_favorite_line"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_favorite_line"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (f *FavoriteItem) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
