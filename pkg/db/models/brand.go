package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is a sneaker manufacturer. Names are unique across the catalog.
type Brand struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null;uniqueIndex"`
	LogoURL   *string    `gorm:"column:logo_url"`
	LogoKey   *string    `gorm:"column:logo_key"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
