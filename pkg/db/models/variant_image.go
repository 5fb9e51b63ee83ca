package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VariantImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID  uuid.UUID `gorm:"column:variant_id;type:uuid;not null;index"`
	URL        string    `gorm:"column:url;not null"`
	StorageKey string    `gorm:"column:storage_key;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *VariantImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
