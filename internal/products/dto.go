package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// ProductSummary is the browse-listing shape.
type ProductSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BrandID    uuid.UUID `json:"brand_id"`
	BrandName  string    `json:"brand_name"`
	Price      int       `json:"price"`
	Discount   int       `json:"discount"`
	FinalPrice string    `json:"final_price"`
	Sold       int       `json:"sold"`
	Star       float64   `json:"star"`
	Gender     []string  `json:"gender"`
	Status     bool      `json:"status"`
	ImageURL   *string   `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductDetail is the full product shape with variants and stock.
type ProductDetail struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	BrandID     uuid.UUID        `json:"brand_id"`
	BrandName   string           `json:"brand_name"`
	Categories  []CategoryRef    `json:"categories"`
	Price       int              `json:"price"`
	Discount    int              `json:"discount"`
	FinalPrice  string           `json:"final_price"`
	Sold        int              `json:"sold"`
	Star        float64          `json:"star"`
	SizeMin     int              `json:"size_min"`
	SizeMax     int              `json:"size_max"`
	Gender      []string         `json:"gender"`
	Description string           `json:"description"`
	Status      bool             `json:"status"`
	Variants    []VariantSummary `json:"variants"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CategoryRef is the embedded category shape on product reads.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// VariantSummary is the embedded variant shape on product reads.
type VariantSummary struct {
	ID     uuid.UUID    `json:"id"`
	Name   string       `json:"name"`
	Status bool         `json:"status"`
	Sizes  []SizeStock  `json:"sizes,omitempty"`
	Images []VariantImg `json:"images,omitempty"`
}

// SizeStock is one size bucket with its remaining quantity.
type SizeStock struct {
	Size     int `json:"size"`
	Quantity int `json:"quantity"`
}

// VariantImg is one stored variant image.
type VariantImg struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// FinalPrice applies the percentage discount to the list price.
func FinalPrice(price, discount int) decimal.Decimal {
	listed := decimal.NewFromInt(int64(price))
	if discount <= 0 {
		return listed
	}
	factor := decimal.NewFromInt(int64(100 - discount)).Div(decimal.NewFromInt(100))
	return listed.Mul(factor).Round(0)
}

func toSummary(product *models.Product) ProductSummary {
	summary := ProductSummary{
		ID:         product.ID,
		Name:       product.Name,
		BrandID:    product.BrandID,
		Price:      product.Price,
		Discount:   product.Discount,
		FinalPrice: FinalPrice(product.Price, product.Discount).String(),
		Sold:       product.Sold,
		Star:       product.Star,
		Gender:     product.Gender,
		Status:     product.Status,
		CreatedAt:  product.CreatedAt,
	}
	if product.Brand != nil {
		summary.BrandName = product.Brand.Name
	}
	for _, variant := range product.Variants {
		if len(variant.Images) > 0 {
			url := variant.Images[0].URL
			summary.ImageURL = &url
			break
		}
	}
	return summary
}

func toDetail(product *models.Product) *ProductDetail {
	detail := &ProductDetail{
		ID:          product.ID,
		Name:        product.Name,
		BrandID:     product.BrandID,
		Price:       product.Price,
		Discount:    product.Discount,
		FinalPrice:  FinalPrice(product.Price, product.Discount).String(),
		Sold:        product.Sold,
		Star:        product.Star,
		SizeMin:     product.SizeMin,
		SizeMax:     product.SizeMax,
		Gender:      product.Gender,
		Description: product.Description,
		Status:      product.Status,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Brand != nil {
		detail.BrandName = product.Brand.Name
	}
	for _, category := range product.Categories {
		detail.Categories = append(detail.Categories, CategoryRef{ID: category.ID, Name: category.Name})
	}
	for _, variant := range product.Variants {
		summary := VariantSummary{
			ID:     variant.ID,
			Name:   variant.Name,
			Status: variant.Status,
		}
		for _, size := range variant.Sizes {
			summary.Sizes = append(summary.Sizes, SizeStock{Size: size.Size, Quantity: size.Quantity})
		}
		for _, image := range variant.Images {
			summary.Images = append(summary.Images, VariantImg{URL: image.URL, Position: image.Position})
		}
		detail.Variants = append(detail.Variants, summary)
	}
	return detail
}
