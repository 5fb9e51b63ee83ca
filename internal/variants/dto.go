package variants

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// VariantDTO is the API shape of a colorway with its stock.
type VariantDTO struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Name      string     `json:"name"`
	Status    bool       `json:"status"`
	Sizes     []SizeDTO  `json:"sizes"`
	Images    []ImageDTO `json:"images"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SizeDTO is one size bucket.
type SizeDTO struct {
	Size     int `json:"size"`
	Quantity int `json:"quantity"`
}

// ImageDTO is one stored image.
type ImageDTO struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

func toDTO(variant *models.ProductVariant) *VariantDTO {
	if variant == nil {
		return nil
	}
	dto := &VariantDTO{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		Name:      variant.Name,
		Status:    variant.Status,
		CreatedAt: variant.CreatedAt,
		UpdatedAt: variant.UpdatedAt,
	}
	for _, size := range variant.Sizes {
		dto.Sizes = append(dto.Sizes, SizeDTO{Size: size.Size, Quantity: size.Quantity})
	}
	for _, image := range variant.Images {
		dto.Images = append(dto.Images, ImageDTO{URL: image.URL, Position: image.Position})
	}
	return dto
}
