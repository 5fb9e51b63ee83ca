package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// Service exposes the customer cart operations.
type Service interface {
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartDTO, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*CartDTO, error)
}

// AddItemInput identifies the (product, variant, size) line to add.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Size      int
	Quantity  int
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type variantReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	GetSize(ctx context.Context, variantID uuid.UUID, size int) (*models.VariantSize, error)
}

type service struct {
	repo        *Repository
	productRepo productLoader
	variantRepo variantReader
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, productRepo productLoader, variantRepo variantReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if variantRepo == nil {
		return nil, fmt.Errorf("variant reader required")
	}
	return &service{
		repo:        repo,
		productRepo: productRepo,
		variantRepo: variantRepo,
	}, nil
}

// AddItem adds a line to the cart. Adding an existing (product, variant,
// size) combination merges quantities; the merged amount is clamped to the
// stock remaining in that size bucket.
func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadPurchasableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVariantOfProduct(ctx, input.VariantID, product.ID); err != nil {
		return nil, err
	}

	bucket, err := s.variantRepo.GetSize(ctx, input.VariantID, input.Size)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size not carried by this variant")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size bucket")
	}
	if bucket.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "this size is sold out")
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	existing, err := s.repo.FindItem(ctx, cart.ID, input.ProductID, input.VariantID, input.Size)
	switch {
	case err == nil:
		merged := existing.Quantity + input.Quantity
		if merged > bucket.Quantity {
			merged = bucket.Quantity
		}
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, merged); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: merge cart line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		quantity := input.Quantity
		if quantity > bucket.Quantity {
			quantity = bucket.Quantity
		}
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Size:      input.Size,
			Quantity:  quantity,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart line")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find cart line")
	}

	return s.GetByCustomer(ctx, customerID)
}

// UpdateQuantity sets a line's quantity, rejecting amounts above the stock
// remaining in the size bucket.
func (s *service) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	_, item, err := s.loadOwnedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	bucket, err := s.variantRepo.GetSize(ctx, item.VariantID, item.Size)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size not carried by this variant")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size bucket")
	}
	if quantity > bucket.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not enough stock for requested quantity").
			WithDetails(map[string]int{"available": bucket.Quantity})
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart line")
	}
	return s.GetByCustomer(ctx, customerID)
}

// RemoveItem deletes a line from the cart.
func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartDTO, error) {
	_, item, err := s.loadOwnedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
	}
	return s.GetByCustomer(ctx, customerID)
}

// GetByCustomer returns the cart with lines split into purchasable and
// sold-out groups.
func (s *service) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.GetWithItems(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartDTO{Subtotal: decimal.Zero.String()}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	view := &CartDTO{ID: cart.ID}
	subtotal := decimal.Zero

	for _, item := range cart.Items {
		line, purchasable, err := s.buildLine(ctx, item)
		if err != nil {
			return nil, err
		}
		if line == nil {
			continue
		}
		if purchasable {
			view.Items = append(view.Items, *line)
			view.TotalQuantity += line.Quantity
			total, err := decimal.NewFromString(line.LineTotal)
			if err == nil {
				subtotal = subtotal.Add(total)
			}
		} else {
			view.SoldOut = append(view.SoldOut, *line)
		}
	}

	view.Subtotal = subtotal.String()
	return view, nil
}

// buildLine resolves the live catalog data behind a cart line. Lines whose
// product or variant was retired are dropped from the view.
func (s *service) buildLine(ctx context.Context, item models.CartItem) (*LineDTO, bool, error) {
	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line product")
	}

	variant, err := s.variantRepo.GetDetail(ctx, item.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line variant")
	}

	available := 0
	for _, bucket := range variant.Sizes {
		if bucket.Size == item.Size {
			available = bucket.Quantity
			break
		}
	}

	line := &LineDTO{
		ItemID:      item.ID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		Size:        item.Size,
		Quantity:    item.Quantity,
		ProductName: product.Name,
		VariantName: variant.Name,
		Price:       product.Price,
		Discount:    product.Discount,
		FinalPrice:  products.FinalPrice(product.Price, product.Discount).String(),
		LineTotal:   lineTotal(product.Price, product.Discount, item.Quantity).String(),
		Available:   available,
	}
	if len(variant.Images) > 0 {
		url := variant.Images[0].URL
		line.ImageURL = &url
	}

	purchasable := available > 0 && product.Status && variant.Status
	return line, purchasable, nil
}

func (s *service) loadPurchasableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if !product.Status {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available for purchase")
	}
	return product, nil
}

func (s *service) ensureVariantOfProduct(ctx context.Context, variantID, productID uuid.UUID) error {
	variant, err := s.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
	}
	if variant.ProductID != productID {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}
	if !variant.Status {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "variant is not available for purchase")
	}
	return nil
}

func (s *service) loadOwnedItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := s.repo.GetWithItems(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line")
	}
	return cart, item, nil
}
