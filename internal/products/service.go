package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// Service exposes catalog product management and browsing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDetail, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDetail, error)
	Delete(ctx context.Context, productID uuid.UUID) error
	List(ctx context.Context, input ListInput) ([]ProductSummary, error)
	GetDetail(ctx context.Context, productID uuid.UUID) (*ProductDetail, error)
	RecomputeStar(ctx context.Context, productID uuid.UUID) error
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name        string
	BrandID     uuid.UUID
	CategoryIDs []uuid.UUID
	Price       int
	Discount    int
	SizeMin     int
	SizeMax     int
	Gender      []string
	Description string
	Status      bool
}

// UpdateInput holds optional mutation values for a product. Price, discount,
// and the size range stay editable; sold and star are derived and never
// accepted from clients.
type UpdateInput struct {
	Name        *string
	BrandID     *uuid.UUID
	CategoryIDs *[]uuid.UUID
	Price       *int
	Discount    *int
	Gender      *[]string
	Description *string
	Status      *bool
}

// ListInput mirrors the browse filters.
type ListInput struct {
	BrandID    *uuid.UUID
	CategoryID *uuid.UUID
	Gender     string
	PriceMin   *int
	PriceMax   *int
	Query      string
	IncludeAll bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type brandLoader interface {
	FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
}

type categoryLoader interface {
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       *Repository
	tx         txRunner
	brands     brandLoader
	categories categoryLoader
	now        func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner, brands brandLoader, categories categoryLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if brands == nil {
		return nil, fmt.Errorf("brand loader required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		brands:     brands,
		categories: categories,
		now:        time.Now,
	}, nil
}

// Create registers a new product in the catalog.
func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDetail, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if err := validatePricing(input.Price, input.Discount); err != nil {
		return nil, err
	}
	if err := validateSizeRange(input.SizeMin, input.SizeMax); err != nil {
		return nil, err
	}
	if err := s.ensureBrandExists(ctx, input.BrandID); err != nil {
		return nil, err
	}
	categories, err := s.loadCategories(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		BrandID:     input.BrandID,
		Categories:  categories,
		Price:       input.Price,
		Discount:    input.Discount,
		SizeMin:     input.SizeMin,
		SizeMax:     input.SizeMax,
		Gender:      input.Gender,
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return s.GetDetail(ctx, created.ID)
}

// Update applies partial changes to a product.
func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDetail, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.BrandID != nil {
		if err := s.ensureBrandExists(ctx, *input.BrandID); err != nil {
			return nil, err
		}
		product.BrandID = *input.BrandID
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if err := validatePricing(product.Price, product.Discount); err != nil {
		return nil, err
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		product.Status = *input.Status
	}

	var categories []models.Category
	replaceCategories := false
	if input.CategoryIDs != nil {
		categories, err = s.loadCategories(ctx, *input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		replaceCategories = true
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if replaceCategories {
			if err := txRepo.ReplaceCategories(ctx, product, categories); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace product categories")
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.GetDetail(ctx, product.ID)
}

// Delete retires the product. The row and its variants stay behind so order
// snapshots and reviews keep resolving.
func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.Retire(ctx, productID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire product")
	}
	return nil
}

// List returns product summaries for the browse surface.
func (s *service) List(ctx context.Context, input ListInput) ([]ProductSummary, error) {
	rows, err := s.repo.List(ctx, ListFilters{
		BrandID:    input.BrandID,
		CategoryID: input.CategoryID,
		Gender:     input.Gender,
		PriceMin:   input.PriceMin,
		PriceMax:   input.PriceMax,
		Query:      input.Query,
		OnlyActive: !input.IncludeAll,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	out := make([]ProductSummary, 0, len(rows))
	for i := range rows {
		out = append(out, toSummary(&rows[i]))
	}
	return out, nil
}

// GetDetail returns the full product with variants and stock.
func (s *service) GetDetail(ctx context.Context, productID uuid.UUID) (*ProductDetail, error) {
	product, err := s.repo.GetDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product detail")
	}
	return toDetail(product), nil
}

// RecomputeStar refreshes the star average from approved reviews.
func (s *service) RecomputeStar(ctx context.Context, productID uuid.UUID) error {
	avg, err := s.repo.AverageApprovedRating(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: average product rating")
	}
	if err := s.repo.SetStar(ctx, productID, avg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set product star")
	}
	return nil
}

func (s *service) ensureBrandExists(ctx context.Context, brandID uuid.UUID) error {
	if _, err := s.brands.FindBrandByID(ctx, brandID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "brand does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load brand")
	}
	return nil
}

func (s *service) loadCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	categories := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate category id")
		}
		seen[id] = struct{}{}
		category, err := s.categories.FindCategoryByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func validatePricing(price, discount int) error {
	if price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if discount < 0 || discount > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	return nil
}

func validateSizeRange(sizeMin, sizeMax int) error {
	if sizeMin <= 0 || sizeMax <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "size range must be positive")
	}
	if sizeMin > sizeMax {
		return pkgerrors.New(pkgerrors.CodeValidation, "size_min cannot exceed size_max")
	}
	return nil
}
