package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
	"github.com/stridewear/stridewear-backend/pkg/migrate"
	"github.com/stridewear/stridewear-backend/pkg/storage/images"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := migrate.Run(context.Background(), conn); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return conn
}

type stubImageStore struct {
	uploads int
	deleted []string
}

func (s *stubImageStore) Upload(_ context.Context, _ io.Reader, filename, folder string) (*images.Asset, error) {
	s.uploads++
	key := fmt.Sprintf("%s/%s-%d", folder, filename, s.uploads)
	return &images.Asset{URL: "https://img.test/" + key, StorageKey: key}, nil
}

func (s *stubImageStore) Delete(_ context.Context, storageKey string) error {
	s.deleted = append(s.deleted, storageKey)
	return nil
}

type catalogFixture struct {
	conn    *gorm.DB
	service Service
	store   *stubImageStore
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	conn := newTestDB(t)
	store := &stubImageStore{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	service, err := NewService(NewRepository(conn), store, config.ImageStoreConfig{ProductFolder: "products"}, logg)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return &catalogFixture{conn: conn, service: service, store: store}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCreateBrandStoresLogo(t *testing.T) {
	f := newCatalogFixture(t)

	brand, err := f.service.CreateBrand(context.Background(), CreateBrandInput{
		Name:         "Saucony",
		Logo:         strings.NewReader("png"),
		LogoFilename: "saucony.png",
	})
	if err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	if brand.LogoURL == nil || !strings.Contains(*brand.LogoURL, "saucony.png") {
		t.Fatalf("expected stored logo url, got %+v", brand.LogoURL)
	}
	if f.store.uploads != 1 {
		t.Fatalf("expected one upload, got %d", f.store.uploads)
	}
}

func TestCreateBrandRejectsDuplicateName(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateBrand(ctx, CreateBrandInput{Name: "Saucony"}); err != nil {
		t.Fatalf("create brand failed: %v", err)
	}

	_, err := f.service.CreateBrand(ctx, CreateBrandInput{Name: "saucony"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateBrandReplacingLogoDropsOldAsset(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	brand, err := f.service.CreateBrand(ctx, CreateBrandInput{
		Name:         "Saucony",
		Logo:         strings.NewReader("png"),
		LogoFilename: "old.png",
	})
	if err != nil {
		t.Fatalf("create brand failed: %v", err)
	}

	updated, err := f.service.UpdateBrand(ctx, brand.ID, UpdateBrandInput{
		Logo:         strings.NewReader("png"),
		LogoFilename: "new.png",
	})
	if err != nil {
		t.Fatalf("update brand failed: %v", err)
	}
	if updated.LogoURL == nil || !strings.Contains(*updated.LogoURL, "new.png") {
		t.Fatalf("expected replaced logo, got %+v", updated.LogoURL)
	}
	if len(f.store.deleted) != 1 || !strings.Contains(f.store.deleted[0], "old.png") {
		t.Fatalf("expected old asset removed, got %v", f.store.deleted)
	}
}

func TestDeleteBrandBlockedWhileProductsRemain(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	brand, err := f.service.CreateBrand(ctx, CreateBrandInput{Name: "Saucony"})
	if err != nil {
		t.Fatalf("create brand failed: %v", err)
	}

	product := &models.Product{
		ID:      uuid.New(),
		Name:    "Endorphin Speed",
		BrandID: brand.ID,
		Price:   4200000,
		SizeMin: 39,
		SizeMax: 45,
		Status:  true,
	}
	if err := f.conn.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	err = f.service.DeleteBrand(ctx, brand.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	err = f.conn.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	if err != nil {
		t.Fatalf("failed to retire product: %v", err)
	}

	if err := f.service.DeleteBrand(ctx, brand.ID); err != nil {
		t.Fatalf("delete brand failed after products retired: %v", err)
	}

	brands, err := f.service.ListBrands(ctx)
	if err != nil {
		t.Fatalf("list brands failed: %v", err)
	}
	if len(brands) != 0 {
		t.Fatalf("expected retired brand out of listings, got %+v", brands)
	}
}

func TestDeleteUnknownBrandIsNotFound(t *testing.T) {
	f := newCatalogFixture(t)

	err := f.service.DeleteBrand(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCategoryLifecycle(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	category, err := f.service.CreateCategory(ctx, "Trail")
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	_, err = f.service.CreateCategory(ctx, "trail")
	requireCode(t, err, pkgerrors.CodeConflict)

	renamed, err := f.service.UpdateCategory(ctx, category.ID, "Trail Running")
	if err != nil {
		t.Fatalf("rename category failed: %v", err)
	}
	if renamed.Name != "Trail Running" {
		t.Fatalf("expected renamed category, got %q", renamed.Name)
	}

	if err := f.service.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}

	rows, err := f.service.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected retired category out of listings, got %+v", rows)
	}
}

func TestRenameCategoryKeepsOwnName(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	category, err := f.service.CreateCategory(ctx, "Trail")
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	kept, err := f.service.UpdateCategory(ctx, category.ID, "trail")
	if err != nil {
		t.Fatalf("case-only rename failed: %v", err)
	}
	if kept.Name != "trail" {
		t.Fatalf("expected lowercased name kept, got %q", kept.Name)
	}
}
