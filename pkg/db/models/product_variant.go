package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is a purchasable colorway of a product. Its size buckets are
// seeded from the product's declared size range at creation time.
type ProductVariant struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string         `gorm:"column:name;not null"`
	Status    bool           `gorm:"column:status;not null;default:true"`
	Sizes     []VariantSize  `gorm:"foreignKey:VariantID"`
	Images    []VariantImage `gorm:"foreignKey:VariantID"`
	DeletedAt *time.Time     `gorm:"column:deleted_at"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
