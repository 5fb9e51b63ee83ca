package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/internal/variants"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type employeeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// Service exposes inventory intake.
type Service interface {
	Create(ctx context.Context, employeeID uuid.UUID, input CreateInput) (*ReceiptDTO, error)
	GetDetail(ctx context.Context, receiptID uuid.UUID) (*ReceiptDTO, error)
	List(ctx context.Context) ([]ReceiptDTO, error)
}

// CreateInput describes one intake: per-product sections whose details credit
// (variant, size) buckets.
type CreateInput struct {
	Name        string
	Warehouse   string
	Supplier    string
	Description string
	Lines       []LineInput
}

// LineInput is one product section. Price becomes the product's new unit
// price.
type LineInput struct {
	ProductID uuid.UUID
	Price     int
	Details   []DetailInput
}

// DetailInput credits one size bucket.
type DetailInput struct {
	VariantID uuid.UUID
	Size      int
	Quantity  int
}

type service struct {
	repo        *Repository
	tx          txRunner
	productRepo *products.Repository
	variantRepo *variants.Repository
	employees   employeeLoader
}

// NewService constructs an import service instance.
func NewService(repo *Repository, tx txRunner, productRepo *products.Repository, variantRepo *variants.Repository, employees employeeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("import repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if variantRepo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee loader required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		productRepo: productRepo,
		variantRepo: variantRepo,
		employees:   employees,
	}, nil
}

// Create records the intake and applies it: every detail credits its size
// bucket, every line resets its product's unit price, and the receipt total
// is the sum of line price times credited quantity.
func (s *service) Create(ctx context.Context, employeeID uuid.UUID, input CreateInput) (*ReceiptDTO, error) {
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee identity missing")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load employee")
	}

	var receiptID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		total := 0
		lines := make([]models.ImportLine, 0, len(input.Lines))

		for _, lineInput := range input.Lines {
			product, err := productRepo.FindByID(ctx, lineInput.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}

			lineQty := 0
			details := make([]models.ImportDetail, 0, len(lineInput.Details))
			for _, detailInput := range lineInput.Details {
				variant, err := variantRepo.FindByID(ctx, detailInput.VariantID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeValidation, "variant not found")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
				}
				if variant.ProductID != product.ID {
					return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
				}

				affected, err := variantRepo.Increment(ctx, detailInput.VariantID, detailInput.Size, detailInput.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit size bucket")
				}
				if affected == 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, "size not carried by this variant")
				}

				lineQty += detailInput.Quantity
				details = append(details, models.ImportDetail{
					VariantID: detailInput.VariantID,
					Size:      detailInput.Size,
					Quantity:  detailInput.Quantity,
				})
			}

			if err := productRepo.SetPrice(ctx, product.ID, lineInput.Price); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set product price")
			}

			total += lineInput.Price * lineQty
			lines = append(lines, models.ImportLine{
				ProductID: product.ID,
				Price:     lineInput.Price,
				Details:   details,
			})
		}

		receipt := &models.ImportReceipt{
			Name:        strings.TrimSpace(input.Name),
			Warehouse:   strings.TrimSpace(input.Warehouse),
			Supplier:    strings.TrimSpace(input.Supplier),
			Description: strings.TrimSpace(input.Description),
			EmployeeID:  employeeID,
			Total:       total,
			Lines:       lines,
		}
		created, err := repo.Create(ctx, receipt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert import receipt")
		}
		receiptID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, receiptID)
}

// GetDetail returns one receipt with its lines.
func (s *service) GetDetail(ctx context.Context, receiptID uuid.UUID) (*ReceiptDTO, error) {
	receipt, err := s.repo.FindDetail(ctx, receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import receipt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load import receipt")
	}
	return toDTO(receipt), nil
}

// List returns all receipts.
func (s *service) List(ctx context.Context) ([]ReceiptDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list import receipts")
	}
	out := make([]ReceiptDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt name is required")
	}
	if strings.TrimSpace(input.Warehouse) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse is required")
	}
	if strings.TrimSpace(input.Supplier) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt needs at least one line")
	}
	for _, line := range input.Lines {
		if line.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
		if len(line.Details) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line needs at least one detail")
		}
		for _, detail := range line.Details {
			if detail.Quantity < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "detail quantity must be at least 1")
			}
		}
	}
	return nil
}
