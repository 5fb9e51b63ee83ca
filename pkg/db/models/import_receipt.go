package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportReceipt records one inventory intake from a supplier. Its lines drive
// the per-size quantity credits on variants.
type ImportReceipt struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	Name        string       `gorm:"column:name;not null"`
	Warehouse   string       `gorm:"column:warehouse;not null"`
	Supplier    string       `gorm:"column:supplier;not null"`
	Description string       `gorm:"column:description"`
	EmployeeID  uuid.UUID    `gorm:"column:employee_id;type:uuid;not null"`
	Total       int          `gorm:"column:total;not null;check:total >= 0"`
	Lines       []ImportLine `gorm:"foreignKey:ReceiptID"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ImportReceipt) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// ImportLine is the per-product section of a receipt; Price becomes the
// product's new unit price.
type ImportLine struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ReceiptID uuid.UUID      `gorm:"column:receipt_id;type:uuid;not null;index"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Price     int            `gorm:"column:price;not null;check:price >= 0"`
	Details   []ImportDetail `gorm:"foreignKey:LineID"`
}

func (l *ImportLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// ImportDetail credits one (variant, size) bucket.
type ImportDetail struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	LineID    uuid.UUID `gorm:"column:line_id;type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Size      int       `gorm:"column:size;not null"`
	Quantity  int       `gorm:"column:quantity;not null;check:quantity >= 1"`
}

func (d *ImportDetail) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
