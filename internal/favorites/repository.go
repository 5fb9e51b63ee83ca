package favorites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together favorite list persistence.
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

// Find loads the customer's favorite entry for a product.
func (r *Repository) Find(ctx context.Context, customerID, productID uuid.UUID) (*models.FavoriteItem, error) {
	var item models.FavoriteItem
	err := r.db.WithContext(ctx).
		First(&item, "customer_id = ? AND product_id = ?", customerID, productID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a favorite entry.
func (r *Repository) Create(ctx context.Context, item *models.FavoriteItem) (*models.FavoriteItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a favorite entry.
func (r *Repository) Delete(ctx context.Context, customerID, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.FavoriteItem{})
	return result.RowsAffected, result.Error
}

// ListByCustomer returns the customer's favorites newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.FavoriteItem, error) {
	var rows []models.FavoriteItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
