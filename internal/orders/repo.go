package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts the order together with its lines and seed itinerary.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads the order row without associations.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindDetail loads the order with lines and itinerary, events oldest first.
func (r *repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Itinerary", func(db *gorm.DB) *gorm.DB {
			return db.Order("time ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally filtered by status.
func (r *repository) List(ctx context.Context, status *enums.OrderStatus) ([]models.Order, error) {
	qb := r.db.WithContext(ctx).Preload("Lines")
	if status != nil {
		qb = qb.Where("status = ?", *status)
	}
	var rows []models.Order
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListByCustomer returns the customer's orders newest first.
func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByShipperAndStatus returns the shipper's orders in one state.
func (r *repository) ListByShipperAndStatus(ctx context.Context, shipperID uuid.UUID, status enums.OrderStatus) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("shipper_id = ? AND status = ?", shipperID, status).
		Order("updated_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus overwrites the order status.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).
		Error
}

// AssignShipper records the shipper responsible for delivery.
func (r *repository) AssignShipper(ctx context.Context, orderID, shipperID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("shipper_id", shipperID).
		Error
}

// SetSuccessProof stores the delivery proof image reference.
func (r *repository) SetSuccessProof(ctx context.Context, orderID uuid.UUID, url, storageKey string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"success_proof_url": url,
			"success_proof_key": storageKey,
		}).
		Error
}

// AppendEvent inserts one itinerary entry. Events are never updated.
func (r *repository) AppendEvent(ctx context.Context, event *models.ItineraryEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindReviewsByOrder returns the reviews written against an order's lines.
func (r *repository) FindReviewsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&rows).
		Error
	return rows, err
}
