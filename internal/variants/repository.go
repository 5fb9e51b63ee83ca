package variants

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together variant and size-bucket persistence.
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

// Create inserts the variant together with its seeded size buckets and
// uploaded images.
func (r *Repository) Create(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// Update persists the variant row without touching associations.
func (r *Repository) Update(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).
		Omit("Sizes", "Images").
		Save(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// FindByID loads a live variant without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// GetDetail loads a live variant with size buckets and images.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("size ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("deleted_at IS NULL").
		First(&variant, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListByProduct returns the live variants of a product.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("size ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// Retire stamps deleted_at on a live variant.
func (r *Repository) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).
		Error
}

// AddImages appends image rows to a variant.
func (r *Repository) AddImages(ctx context.Context, images []models.VariantImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// GetSize loads one size bucket.
func (r *Repository) GetSize(ctx context.Context, variantID uuid.UUID, size int) (*models.VariantSize, error) {
	var bucket models.VariantSize
	if err := r.db.WithContext(ctx).
		First(&bucket, "variant_id = ? AND size = ?", variantID, size).Error; err != nil {
		return nil, err
	}
	return &bucket, nil
}

// SetQuantity overwrites one size bucket's stock level.
func (r *Repository) SetQuantity(ctx context.Context, variantID uuid.UUID, size, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VariantSize{}).
		Where("variant_id = ? AND size = ?", variantID, size).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// DecrementIfAvailable debits the bucket only when enough stock remains. The
// guard in the WHERE clause makes concurrent checkouts race-safe; a zero row
// count means insufficient stock.
func (r *Repository) DecrementIfAvailable(ctx context.Context, variantID uuid.UUID, size, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VariantSize{}).
		Where("variant_id = ? AND size = ? AND quantity >= ?", variantID, size, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Increment credits stock back to a bucket.
func (r *Repository) Increment(ctx context.Context, variantID uuid.UUID, size, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VariantSize{}).
		Where("variant_id = ? AND size = ?", variantID, size).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	return result.RowsAffected, result.Error
}
