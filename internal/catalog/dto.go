package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// BrandDTO is the API shape of a brand.
type BrandDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBrandDTO(brand *models.Brand) *BrandDTO {
	if brand == nil {
		return nil
	}
	return &BrandDTO{
		ID:        brand.ID,
		Name:      brand.Name,
		LogoURL:   brand.LogoURL,
		CreatedAt: brand.CreatedAt,
		UpdatedAt: brand.UpdatedAt,
	}
}

func toCategoryDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}
