package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Itinerary titles written by the order lifecycle. TitleDeliveryCompleted is
// the completion marker and requires a proof image.
const (
	TitleOrderPlaced       = "order placed"
	TitlePackagingComplete = "packaging complete"
	TitleDeliveryCompleted = "delivery completed"
	TitleOrderCanceled     = "order canceled"
)

// LineOutcome reports what happened to one cart line during checkout.
type LineOutcome struct {
	CartItemID uuid.UUID `json:"cart_item_id"`
	ProductID  uuid.UUID `json:"product_id"`
	VariantID  uuid.UUID `json:"variant_id"`
	Size       int       `json:"size"`
	Quantity   int       `json:"quantity"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
}

// Line outcomes.
const (
	OutcomeFulfilled         = "fulfilled"
	OutcomeInsufficientStock = "insufficient_stock"
)

// CheckoutResult pairs the created order with the per-line report.
type CheckoutResult struct {
	Order *OrderDetail  `json:"order"`
	Lines []LineOutcome `json:"lines"`
}

// OrderSummary is the list shape of an order.
type OrderSummary struct {
	ID             uuid.UUID         `json:"id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	Status         enums.OrderStatus `json:"status"`
	DeliveryMethod string            `json:"delivery_method"`
	PaymentMethod  string            `json:"payment_method"`
	Total          int               `json:"total"`
	ShippingFee    int               `json:"shipping_fee"`
	LineCount      int               `json:"line_count"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// OrderLineDTO is one frozen purchase line.
type OrderLineDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Size      int       `json:"size"`
	Quantity  int       `json:"quantity"`
	Price     int       `json:"price"`
	Discount  int       `json:"discount"`
	Reviewed  bool      `json:"reviewed"`
}

// ItineraryEventDTO is one delivery log entry.
type ItineraryEventDTO struct {
	Title   string    `json:"title"`
	Caption string    `json:"caption,omitempty"`
	Time    time.Time `json:"time"`
}

// OrderDetail is the full order shape.
type OrderDetail struct {
	ID               uuid.UUID           `json:"id"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	AddressID        uuid.UUID           `json:"address_id"`
	DeliveryMethodID int                 `json:"delivery_method_id"`
	DeliveryMethod   string              `json:"delivery_method"`
	PaymentMethod    string              `json:"payment_method"`
	Total            int                 `json:"total"`
	ShippingFee      int                 `json:"shipping_fee"`
	EstimatedTime    int64               `json:"estimated_time"`
	Status           enums.OrderStatus   `json:"status"`
	ShipperID        *uuid.UUID          `json:"shipper_id,omitempty"`
	SuccessProofURL  *string             `json:"success_proof_url,omitempty"`
	Lines            []OrderLineDTO      `json:"lines"`
	Itinerary        []ItineraryEventDTO `json:"itinerary"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func toSummary(order *models.Order) OrderSummary {
	return OrderSummary{
		ID:             order.ID,
		CustomerID:     order.CustomerID,
		Status:         order.Status,
		DeliveryMethod: order.DeliveryMethod,
		PaymentMethod:  order.PaymentMethod,
		Total:          order.Total,
		ShippingFee:    order.ShippingFee,
		LineCount:      len(order.Lines),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func toDetail(order *models.Order, reviews []models.Review) *OrderDetail {
	reviewed := make(map[lineKey]bool, len(reviews))
	for _, review := range reviews {
		reviewed[lineKey{review.VariantID, review.Size}] = true
	}

	detail := &OrderDetail{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		AddressID:        order.AddressID,
		DeliveryMethodID: order.DeliveryMethodID,
		DeliveryMethod:   order.DeliveryMethod,
		PaymentMethod:    order.PaymentMethod,
		Total:            order.Total,
		ShippingFee:      order.ShippingFee,
		EstimatedTime:    order.EstimatedTime,
		Status:           order.Status,
		ShipperID:        order.ShipperID,
		SuccessProofURL:  order.SuccessProofURL,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, line := range order.Lines {
		detail.Lines = append(detail.Lines, OrderLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Discount:  line.Discount,
			Reviewed:  reviewed[lineKey{line.VariantID, line.Size}],
		})
	}
	for _, event := range order.Itinerary {
		detail.Itinerary = append(detail.Itinerary, ItineraryEventDTO{
			Title:   event.Title,
			Caption: event.Caption,
			Time:    event.Time,
		})
	}
	return detail
}

type lineKey struct {
	variantID uuid.UUID
	size      int
}
