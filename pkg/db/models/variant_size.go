package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantSize is one inventory bucket: the stock of a variant in one size.
// Quantity must never go negative; the conditional decrement in the variants
// repository is the only debit path.
type VariantSize struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_variant_size"`
	Size      int       `gorm:"column:size;not null;uniqueIndex:idx_variant_size"`
	Quantity  int       `gorm:"column:quantity;not null;default:0;check:quantity >= 0"`
}

func (s *VariantSize) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
