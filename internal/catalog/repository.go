package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together brand and category persistence.
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

// CreateBrand inserts a new brand row.
func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// UpdateBrand persists the full brand row.
func (r *Repository) UpdateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// FindBrandByID loads a brand that has not been retired.
func (r *Repository) FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindBrandByName checks name uniqueness among live brands.
func (r *Repository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where("LOWER(name) = LOWER(?)", name).
		First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListBrands returns live brands ordered by name.
func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var rows []models.Brand
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// RetireBrand stamps deleted_at so the brand disappears from listings while
// existing products keep their reference.
func (r *Repository) RetireBrand(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).
		Error
}

// CountLiveProductsByBrand reports how many catalog products still point at
// the brand.
func (r *Repository) CountLiveProductsByBrand(ctx context.Context, brandID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("brand_id = ? AND deleted_at IS NULL", brandID).
		Count(&count).
		Error
	return count, err
}

// CreateCategory inserts a new category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory persists the full category row.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindCategoryByID loads a category that has not been retired.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindCategoryByName checks name uniqueness among live categories.
func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where("LOWER(name) = LOWER(?)", name).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns live categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// RetireCategory stamps deleted_at on a live category.
func (r *Repository) RetireCategory(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).
		Error
}
