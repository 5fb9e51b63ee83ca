package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Employee is a back-office staff member or a delivery shipper.
type Employee struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Email        string             `gorm:"column:email;not null;uniqueIndex"`
	Phone        *string            `gorm:"column:phone"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	Role         enums.EmployeeRole `gorm:"column:role;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
