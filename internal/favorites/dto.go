package favorites

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// FavoriteDTO is one entry on the customer's favorite list, with enough
// product context to render a card.
type FavoriteDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Price      int       `json:"price"`
	Discount   int       `json:"discount"`
	FinalPrice string    `json:"final_price"`
	Star       float64   `json:"star"`
	Status     bool      `json:"status"`
	ImageURL   *string   `json:"image_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

func toDTO(item *models.FavoriteItem, product *models.Product) FavoriteDTO {
	dto := FavoriteDTO{
		ProductID: item.ProductID,
		AddedAt:   item.CreatedAt,
	}
	if product == nil {
		return dto
	}
	dto.Name = product.Name
	dto.Price = product.Price
	dto.Discount = product.Discount
	dto.FinalPrice = products.FinalPrice(product.Price, product.Discount).String()
	dto.Star = product.Star
	dto.Status = product.Status
	for _, variant := range product.Variants {
		if len(variant.Images) > 0 {
			url := variant.Images[0].URL
			dto.ImageURL = &url
			break
		}
	}
	return dto
}
