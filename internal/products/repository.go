package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateProduct inserts a product row together with its category links.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct persists the product row without touching associations.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).
		Omit("Categories", "Variants", "Brand").
		Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceCategories swaps the product's category set.
func (r *Repository) ReplaceCategories(ctx context.Context, product *models.Product, categories []models.Category) error {
	return r.db.WithContext(ctx).
		Model(product).
		Association("Categories").
		Replace(categories)
}

// FindByID loads a live product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDetail loads a live product with brand, categories, and live variants
// including their size buckets and images.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Categories", "deleted_at IS NULL").
		Preload("Variants", "deleted_at IS NULL").
		Preload("Variants.Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("size ASC")
		}).
		Preload("Variants.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("deleted_at IS NULL").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFilters narrows the browse query.
type ListFilters struct {
	BrandID    *uuid.UUID
	CategoryID *uuid.UUID
	Gender     string
	PriceMin   *int
	PriceMax   *int
	Query      string
	OnlyActive bool
}

// List returns live products matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Brand").
		Preload("Variants", "deleted_at IS NULL").
		Preload("Variants.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("products.deleted_at IS NULL")

	if filters.OnlyActive {
		qb = qb.Where("products.status = ?", true)
	}
	if filters.BrandID != nil {
		qb = qb.Where("products.brand_id = ?", *filters.BrandID)
	}
	if filters.CategoryID != nil {
		qb = qb.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", *filters.CategoryID)
	}
	if filters.Gender != "" {
		qb = qb.Where("? = ANY(products.gender)", filters.Gender)
	}
	if filters.PriceMin != nil {
		qb = qb.Where("products.price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		qb = qb.Where("products.price <= ?", *filters.PriceMax)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		qb = qb.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rows []models.Product
	err := qb.Order("products.created_at DESC").Find(&rows).Error
	return rows, err
}

// Retire stamps deleted_at on a live product.
func (r *Repository) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).
		Error
}

// AdjustSold shifts the derived sold counter by delta.
func (r *Repository) AdjustSold(ctx context.Context, productID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("sold", gorm.Expr("sold + ?", delta)).
		Error
}

// SetPrice overwrites the product's unit price.
func (r *Repository) SetPrice(ctx context.Context, productID uuid.UUID, price int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("price", price).
		Error
}

// SetStar overwrites the derived star average.
func (r *Repository) SetStar(ctx context.Context, productID uuid.UUID, star float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("star", star).
		Error
}

// AverageApprovedRating computes the mean approved review rating, zero when
// no approved review exists.
func (r *Repository) AverageApprovedRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND status = ?", productID, enums.ReviewStatusApproved).
		Select("AVG(rating)").
		Scan(&avg).
		Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
