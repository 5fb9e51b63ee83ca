package catalog

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

// Service exposes brand and category management.
type Service interface {
	CreateBrand(ctx context.Context, input CreateBrandInput) (*BrandDTO, error)
	UpdateBrand(ctx context.Context, brandID uuid.UUID, input UpdateBrandInput) (*BrandDTO, error)
	DeleteBrand(ctx context.Context, brandID uuid.UUID) error
	ListBrands(ctx context.Context) ([]BrandDTO, error)

	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

// CreateBrandInput holds the validated payload to create a brand.
type CreateBrandInput struct {
	Name         string
	Logo         io.Reader
	LogoFilename string
}

// UpdateBrandInput holds optional mutation values for a brand.
type UpdateBrandInput struct {
	Name         *string
	Logo         io.Reader
	LogoFilename string
}

type service struct {
	repo       *Repository
	imageStore images.Uploader
	imageCfg   config.ImageStoreConfig
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, imageStore images.Uploader, imageCfg config.ImageStoreConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if imageStore == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		imageStore: imageStore,
		imageCfg:   imageCfg,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// CreateBrand registers a brand, rejecting duplicate names.
func (s *service) CreateBrand(ctx context.Context, input CreateBrandInput) (*BrandDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name is required")
	}

	if err := s.ensureBrandNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	brand := &models.Brand{Name: name}

	if input.Logo != nil {
		asset, err := s.imageStore.Upload(ctx, input.Logo, input.LogoFilename, s.imageCfg.ProductFolder)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image store: upload brand logo")
		}
		brand.LogoURL = &asset.URL
		brand.LogoKey = &asset.StorageKey
	}

	created, err := s.repo.CreateBrand(ctx, brand)
	if err != nil {
		s.cleanupLogo(ctx, brand.LogoKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert brand")
	}
	return toBrandDTO(created), nil
}

// UpdateBrand renames a brand and/or replaces its logo.
func (s *service) UpdateBrand(ctx context.Context, brandID uuid.UUID, input UpdateBrandInput) (*BrandDTO, error) {
	brand, err := s.repo.FindBrandByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load brand")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name cannot be empty")
		}
		if err := s.ensureBrandNameFree(ctx, name, brand.ID); err != nil {
			return nil, err
		}
		brand.Name = name
	}

	var previousLogoKey *string
	if input.Logo != nil {
		asset, err := s.imageStore.Upload(ctx, input.Logo, input.LogoFilename, s.imageCfg.ProductFolder)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image store: upload brand logo")
		}
		previousLogoKey = brand.LogoKey
		brand.LogoURL = &asset.URL
		brand.LogoKey = &asset.StorageKey
	}

	updated, err := s.repo.UpdateBrand(ctx, brand)
	if err != nil {
		s.cleanupLogo(ctx, brand.LogoKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update brand")
	}

	// The replaced logo is orphaned once the row commits.
	s.cleanupLogo(ctx, previousLogoKey)

	return toBrandDTO(updated), nil
}

// DeleteBrand retires a brand that no live product references.
func (s *service) DeleteBrand(ctx context.Context, brandID uuid.UUID) error {
	brand, err := s.repo.FindBrandByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load brand")
	}

	inUse, err := s.repo.CountLiveProductsByBrand(ctx, brand.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count brand products")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "brand still has products in the catalog")
	}

	if err := s.repo.RetireBrand(ctx, brand.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire brand")
	}
	return nil
}

// ListBrands returns all live brands.
func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	rows, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list brands")
	}
	out := make([]BrandDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toBrandDTO(&rows[i]))
	}
	return out, nil
}

// CreateCategory registers a category, rejecting duplicate names.
func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	if err := s.ensureCategoryNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return toCategoryDTO(created), nil
}

// UpdateCategory renames a category.
func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
	}

	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}

	if err := s.ensureCategoryNameFree(ctx, name, category.ID); err != nil {
		return nil, err
	}

	category.Name = name
	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}
	return toCategoryDTO(updated), nil
}

// DeleteCategory retires a category. Products keep their association rows but
// retired categories drop out of browse responses.
func (s *service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}

	if err := s.repo.RetireCategory(ctx, category.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire category")
	}
	return nil
}

// ListCategories returns all live categories.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toCategoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) ensureBrandNameFree(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := s.repo.FindBrandByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check brand name")
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeConflict, "brand name already exists")
	}
	return nil
}

func (s *service) ensureCategoryNameFree(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := s.repo.FindCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check category name")
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	}
	return nil
}

func (s *service) cleanupLogo(ctx context.Context, storageKey *string) {
	if storageKey == nil || *storageKey == "" {
		return
	}
	if err := s.imageStore.Delete(ctx, *storageKey); err != nil {
		s.logg.Warn(ctx, "image store: deleting orphaned brand logo failed")
	}
}
