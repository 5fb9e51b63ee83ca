package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// Service exposes customer reviews and staff moderation.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	Moderate(ctx context.Context, reviewID uuid.UUID, decision Decision) (*ReviewDTO, error)
	ListApprovedByProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]ReviewDTO, error)
	ListPending(ctx context.Context) ([]ReviewDTO, error)
}

// CreateInput ties a rating to one purchased line.
type CreateInput struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	VariantID uuid.UUID
	Size      int
	Rating    int
	Content   string
}

// Decision is a moderation outcome.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionHide    Decision = "hide"
)

type orderLoader interface {
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type starRecomputer interface {
	RecomputeStar(ctx context.Context, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	orders   orderLoader
	products starRecomputer
	now      func() time.Time
}

// NewService constructs a review service instance.
func NewService(repo *Repository, orders orderLoader, products starRecomputer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("star recomputer required")
	}
	return &service{
		repo:     repo,
		orders:   orders,
		products: products,
		now:      time.Now,
	}, nil
}

// Create records a pending review for one delivered purchase line. The line
// must belong to one of the customer's successful orders and can only be
// reviewed once.
func (s *service) Create(ctx context.Context, customerID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.orders.FindDetail(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	if order.Status != enums.OrderStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be reviewed")
	}

	lineFound := false
	for _, line := range order.Lines {
		if line.ProductID == input.ProductID && line.VariantID == input.VariantID && line.Size == input.Size {
			lineFound = true
			break
		}
	}
	if !lineFound {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase line not found on order")
	}

	_, err = s.repo.FindByOrderLine(ctx, customerID, input.OrderID, input.VariantID, input.Size)
	switch {
	case err == nil:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "line already reviewed")
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check existing review")
	}

	review := &models.Review{
		ProductID:  input.ProductID,
		CustomerID: customerID,
		OrderID:    input.OrderID,
		VariantID:  input.VariantID,
		Size:       input.Size,
		Rating:     input.Rating,
		Content:    strings.TrimSpace(input.Content),
		Status:     enums.ReviewStatusPending,
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}
	return toDTO(created), nil
}

// Moderate approves or hides a review and refreshes the product star average
// whenever the set of approved reviews changes.
func (s *service) Moderate(ctx context.Context, reviewID uuid.UUID, decision Decision) (*ReviewDTO, error) {
	var target enums.ReviewStatus
	switch decision {
	case DecisionApprove:
		target = enums.ReviewStatusApproved
	case DecisionHide:
		target = enums.ReviewStatusHidden
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown moderation decision")
	}

	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load review")
	}
	if review.Status == target {
		return toDTO(review), nil
	}

	if err := s.repo.UpdateStatus(ctx, review.ID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update review status")
	}

	if target == enums.ReviewStatusApproved || review.Status == enums.ReviewStatusApproved {
		if err := s.products.RecomputeStar(ctx, review.ProductID); err != nil {
			return nil, err
		}
	}

	review.Status = target
	return toDTO(review), nil
}

// ListApprovedByProduct returns the public reviews of a product.
func (s *service) ListApprovedByProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID, enums.ReviewStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product reviews")
	}
	return toDTOs(rows), nil
}

// ListByCustomer returns the customer's own reviews regardless of status.
func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customer reviews")
	}
	return toDTOs(rows), nil
}

// ListPending returns the moderation queue, oldest first.
func (s *service) ListPending(ctx context.Context) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.ReviewStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pending reviews")
	}
	return toDTOs(rows), nil
}
