package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their itinerary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status *enums.OrderStatus) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListByShipperAndStatus(ctx context.Context, shipperID uuid.UUID, status enums.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	AssignShipper(ctx context.Context, orderID, shipperID uuid.UUID) error
	SetSuccessProof(ctx context.Context, orderID uuid.UUID, url, storageKey string) error
	AppendEvent(ctx context.Context, event *models.ItineraryEvent) error
	FindReviewsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Review, error)
}
