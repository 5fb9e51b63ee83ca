package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Repository wires together cart persistence.
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

// GetOrCreate returns the customer's cart, creating the row on first use.
func (r *Repository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where(models.Cart{CustomerID: customerID}).
		FirstOrCreate(&cart).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetWithItems loads the customer's cart and its lines, oldest first. Returns
// gorm.ErrRecordNotFound when the customer has no cart yet.
func (r *Repository) GetWithItems(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&cart, "customer_id = ?", customerID).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindItem loads the line matching the (product, variant, size) combination.
func (r *Repository) FindItem(ctx context.Context, cartID, productID, variantID uuid.UUID, size int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND product_id = ? AND variant_id = ? AND size = ?",
			cartID, productID, variantID, size).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByID loads a line by primary key scoped to the cart.
func (r *Repository) FindItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND cart_id = ?", itemID, cartID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity overwrites a line's quantity.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).
		Error
}

// DeleteItem removes a line from the cart.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).
		Error
}

// DeleteItems removes a batch of lines, used after checkout commits.
func (r *Repository) DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Delete(&models.CartItem{}).
		Error
}
