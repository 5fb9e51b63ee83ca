package imports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together import receipt persistence.
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

// Create inserts the receipt with its lines and details.
func (r *Repository) Create(ctx context.Context, receipt *models.ImportReceipt) (*models.ImportReceipt, error) {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return nil, err
	}
	return receipt, nil
}

// FindDetail loads a receipt with lines and details.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.ImportReceipt, error) {
	var receipt models.ImportReceipt
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Details").
		First(&receipt, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// List returns receipts newest first.
func (r *Repository) List(ctx context.Context) ([]models.ImportReceipt, error) {
	var rows []models.ImportReceipt
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Details").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
