package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerAddress is a saved delivery destination, keyed by the logistics
// provider's region identifiers.
type CustomerAddress struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Receiver   string    `gorm:"column:receiver;not null"`
	Phone      string    `gorm:"column:phone;not null"`
	ProvinceID int       `gorm:"column:province_id;not null"`
	DistrictID int       `gorm:"column:district_id;not null"`
	WardCode   string    `gorm:"column:ward_code;not null"`
	Detail     string    `gorm:"column:detail;not null"`
	IsDefault  bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *CustomerAddress) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
