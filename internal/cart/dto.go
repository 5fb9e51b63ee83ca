package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stridewear/stridewear-backend/internal/products"
)

// LineDTO is one cart line enriched with live catalog data.
type LineDTO struct {
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	Size        int       `json:"size"`
	Quantity    int       `json:"quantity"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Price       int       `json:"price"`
	Discount    int       `json:"discount"`
	FinalPrice  string    `json:"final_price"`
	LineTotal   string    `json:"line_total"`
	Available   int       `json:"available"`
}

// CartDTO splits lines into purchasable and sold-out groups. Subtotal covers
// only the purchasable lines.
type CartDTO struct {
	ID            uuid.UUID `json:"id"`
	Items         []LineDTO `json:"items"`
	SoldOut       []LineDTO `json:"sold_out"`
	Subtotal      string    `json:"subtotal"`
	TotalQuantity int       `json:"total_quantity"`
}

func lineTotal(price, discount, quantity int) decimal.Decimal {
	return products.FinalPrice(price, discount).Mul(decimal.NewFromInt(int64(quantity)))
}
