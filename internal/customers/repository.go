package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together customer account and address persistence.
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

// Create inserts a customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads one customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail loads a customer by email, case-insensitive.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		First(&customer, "LOWER(email) = ?", strings.ToLower(email)).
		Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update persists profile fields on a customer row.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateAddress inserts an address row.
func (r *Repository) CreateAddress(ctx context.Context, address *models.CustomerAddress) (*models.CustomerAddress, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// FindAddressByID loads one address.
func (r *Repository) FindAddressByID(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error) {
	var address models.CustomerAddress
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// ListAddresses returns a customer's addresses, default first then newest.
func (r *Repository) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAddress, error) {
	var rows []models.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC, created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateAddress persists changes to an address row.
func (r *Repository) UpdateAddress(ctx context.Context, address *models.CustomerAddress) (*models.CustomerAddress, error) {
	if err := r.db.WithContext(ctx).Save(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress removes an address row.
func (r *Repository) DeleteAddress(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.CustomerAddress{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// ClearDefault unsets the default flag on all of a customer's addresses.
func (r *Repository) ClearDefault(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CustomerAddress{}).
		Where("customer_id = ? AND is_default", customerID).
		Update("is_default", false).
		Error
}

// SetDefault marks one address as the customer's default.
func (r *Repository) SetDefault(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CustomerAddress{}).
		Where("id = ?", id).
		Update("is_default", true).
		Error
}
