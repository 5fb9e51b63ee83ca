package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Review is a customer rating tied to a purchased line. Only approved reviews
// count toward the product star average.
type Review struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	CustomerID uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	VariantID  uuid.UUID          `gorm:"column:variant_id;type:uuid;not null"`
	Size       int                `gorm:"column:size;not null"`
	Rating     int                `gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5"`
	Content    string             `gorm:"column:content"`
	Status     enums.ReviewStatus `gorm:"column:status;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
