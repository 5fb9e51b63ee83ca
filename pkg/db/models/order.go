package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Order is a committed purchase. Lines are frozen snapshots taken at checkout;
// the itinerary records delivery progress and is append-only.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	AddressID        uuid.UUID         `gorm:"column:address_id;type:uuid;not null"`
	DeliveryMethodID int               `gorm:"column:delivery_method_id;not null"`
	DeliveryMethod   string            `gorm:"column:delivery_method;not null"`
	PaymentMethod    string            `gorm:"column:payment_method;not null"`
	Total            int               `gorm:"column:total;not null"`
	ShippingFee      int               `gorm:"column:shipping_fee;not null"`
	EstimatedTime    int64             `gorm:"column:estimated_time;not null"`
	Status           enums.OrderStatus `gorm:"column:status;not null;index"`
	ShipperID        *uuid.UUID        `gorm:"column:shipper_id;type:uuid;index"`
	SuccessProofURL  *string           `gorm:"column:success_proof_url"`
	SuccessProofKey  *string           `gorm:"column:success_proof_key"`
	Lines            []OrderLine       `gorm:"foreignKey:OrderID"`
	Itinerary        []ItineraryEvent  `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
