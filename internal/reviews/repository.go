package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Repository wires together review persistence.
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

// Create inserts a review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindByID loads one review.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByOrderLine checks whether the customer already reviewed the purchased
// line.
func (r *Repository) FindByOrderLine(ctx context.Context, customerID, orderID, variantID uuid.UUID, size int) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		First(&review, "customer_id = ? AND order_id = ? AND variant_id = ? AND size = ?",
			customerID, orderID, variantID, size).
		Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns a product's reviews in one status, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, status enums.ReviewStatus) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, status).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByCustomer returns all of a customer's reviews, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByStatus returns all reviews in one status for moderation.
func (r *Repository) ListByStatus(ctx context.Context, status enums.ReviewStatus) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus moves a review through moderation.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReviewStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}
