package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// Service manages a customer's favorite product list.
type Service interface {
	Add(ctx context.Context, customerID, productID uuid.UUID) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]FavoriteDTO, error)
}

type productLoader interface {
	GetDetail(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService constructs a favorites service instance.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favorites repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Add puts a live product on the customer's list. Adding the same product
// twice is a no-op.
func (s *service) Add(ctx context.Context, customerID, productID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}

	if _, err := s.products.GetDetail(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	_, err := s.repo.Find(ctx, customerID, productID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check favorite")
	}

	_, err = s.repo.Create(ctx, &models.FavoriteItem{
		CustomerID: customerID,
		ProductID:  productID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert favorite")
	}
	return nil
}

// Remove drops the product from the customer's list.
func (s *service) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	affected, err := s.repo.Delete(ctx, customerID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete favorite")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not on the favorite list")
	}
	return nil
}

// ListByCustomer returns the favorite list newest first. Entries whose
// product has since been retired are skipped.
func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]FavoriteDTO, error) {
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list favorites")
	}

	out := make([]FavoriteDTO, 0, len(items))
	for i := range items {
		product, err := s.products.GetDetail(ctx, items[i].ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		out = append(out, toDTO(&items[i], product))
	}
	return out, nil
}
