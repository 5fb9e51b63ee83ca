package variants

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
	"github.com/stridewear/stridewear-backend/pkg/storage/images"
)

// Service exposes colorway and inventory management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*VariantDTO, error)
	Update(ctx context.Context, variantID uuid.UUID, input UpdateInput) (*VariantDTO, error)
	Delete(ctx context.Context, variantID uuid.UUID) error
	GetDetail(ctx context.Context, variantID uuid.UUID) (*VariantDTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]VariantDTO, error)
	AddImages(ctx context.Context, variantID uuid.UUID, uploads []ImageUpload) (*VariantDTO, error)
	SetQuantity(ctx context.Context, variantID uuid.UUID, size, quantity int) error
}

// CreateInput holds the validated payload to create a variant.
type CreateInput struct {
	ProductID uuid.UUID
	Name      string
	Status    bool
	Images    []ImageUpload
}

// UpdateInput holds optional mutation values for a variant.
type UpdateInput struct {
	Name   *string
	Status *bool
}

// ImageUpload is one incoming image file.
type ImageUpload struct {
	File     io.Reader
	Filename string
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo       *Repository
	products   productLoader
	imageStore images.Uploader
	imageCfg   config.ImageStoreConfig
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs a variant service instance.
func NewService(repo *Repository, products productLoader, imageStore images.Uploader, imageCfg config.ImageStoreConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if imageStore == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		products:   products,
		imageStore: imageStore,
		imageCfg:   imageCfg,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// Create adds a colorway to a product. Size buckets are seeded from the
// product's declared range with zero stock; imports credit them later.
func (s *service) Create(ctx context.Context, input CreateInput) (*VariantDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	uploaded, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	variant := &models.ProductVariant{
		ProductID: product.ID,
		Name:      name,
		Status:    input.Status,
		Sizes:     seedSizes(product.SizeMin, product.SizeMax),
		Images:    uploaded,
	}

	created, err := s.repo.Create(ctx, variant)
	if err != nil {
		s.cleanupImages(ctx, uploaded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
	}
	return s.GetDetail(ctx, created.ID)
}

// Update applies partial changes to a variant.
func (s *service) Update(ctx context.Context, variantID uuid.UUID, input UpdateInput) (*VariantDTO, error) {
	variant, err := s.loadVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name cannot be empty")
		}
		variant.Name = name
	}
	if input.Status != nil {
		variant.Status = *input.Status
	}

	if _, err := s.repo.Update(ctx, variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update variant")
	}
	return s.GetDetail(ctx, variant.ID)
}

// Delete retires the variant. Buckets and images stay behind for order
// snapshots.
func (s *service) Delete(ctx context.Context, variantID uuid.UUID) error {
	if _, err := s.loadVariant(ctx, variantID); err != nil {
		return err
	}
	if err := s.repo.Retire(ctx, variantID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire variant")
	}
	return nil
}

// GetDetail returns the variant with size buckets and images.
func (s *service) GetDetail(ctx context.Context, variantID uuid.UUID) (*VariantDTO, error) {
	variant, err := s.repo.GetDetail(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
	}
	return toDTO(variant), nil
}

// ListByProduct returns all live variants of a product.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]VariantDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list variants")
	}
	out := make([]VariantDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// AddImages uploads and appends images to an existing variant.
func (s *service) AddImages(ctx context.Context, variantID uuid.UUID, uploads []ImageUpload) (*VariantDTO, error) {
	if len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}

	variant, err := s.repo.GetDetail(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
	}

	uploaded, err := s.uploadImages(ctx, uploads)
	if err != nil {
		return nil, err
	}
	base := len(variant.Images)
	for i := range uploaded {
		uploaded[i].VariantID = variant.ID
		uploaded[i].Position = base + i
	}

	if err := s.repo.AddImages(ctx, uploaded); err != nil {
		s.cleanupImages(ctx, uploaded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant images")
	}
	return s.GetDetail(ctx, variant.ID)
}

// SetQuantity overwrites one size bucket's stock level.
func (s *service) SetQuantity(ctx context.Context, variantID uuid.UUID, size, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.loadVariant(ctx, variantID); err != nil {
		return err
	}
	affected, err := s.repo.SetQuantity(ctx, variantID, size, quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set size quantity")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "size not carried by this variant")
	}
	return nil
}

func (s *service) loadVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	variant, err := s.repo.FindByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
	}
	return variant, nil
}

func (s *service) uploadImages(ctx context.Context, uploads []ImageUpload) ([]models.VariantImage, error) {
	rows := make([]models.VariantImage, 0, len(uploads))
	for i, upload := range uploads {
		asset, err := s.imageStore.Upload(ctx, upload.File, upload.Filename, s.imageCfg.ProductFolder)
		if err != nil {
			s.cleanupImages(ctx, rows)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image store: upload variant image")
		}
		rows = append(rows, models.VariantImage{
			URL:        asset.URL,
			StorageKey: asset.StorageKey,
			Position:   i,
		})
	}
	return rows, nil
}

func (s *service) cleanupImages(ctx context.Context, rows []models.VariantImage) {
	for _, row := range rows {
		if row.StorageKey == "" {
			continue
		}
		if err := s.imageStore.Delete(ctx, row.StorageKey); err != nil {
			s.logg.Warn(ctx, "image store: deleting orphaned variant image failed")
		}
	}
}

func seedSizes(sizeMin, sizeMax int) []models.VariantSize {
	if sizeMin <= 0 || sizeMax < sizeMin {
		return nil
	}
	buckets := make([]models.VariantSize, 0, sizeMax-sizeMin+1)
	for size := sizeMin; size <= sizeMax; size++ {
		buckets = append(buckets, models.VariantSize{Size: size, Quantity: 0})
	}
	return buckets
}
