package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/internal/variants"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/migrate"
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

type cartFixture struct {
	conn       *gorm.DB
	service    Service
	customerID uuid.UUID
	productID  uuid.UUID
	variantID  uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	conn := newTestDB(t)

	logoURL := "https://img.test/adidas.png"
	brand := &models.Brand{ID: uuid.New(), Name: "Adidas", LogoURL: &logoURL}
	if err := conn.Create(brand).Error; err != nil {
		t.Fatalf("failed to seed brand: %v", err)
	}
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Ultraboost Light",
		BrandID:  brand.ID,
		Price:    4200000,
		Discount: 0,
		SizeMin:  38,
		SizeMax:  45,
		Status:   true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	variant := &models.ProductVariant{ID: uuid.New(), ProductID: product.ID, Name: "Core Black", Status: true}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}

	service, err := NewService(NewRepository(conn), products.NewRepository(conn), variants.NewRepository(conn))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return &cartFixture{
		conn:       conn,
		service:    service,
		customerID: uuid.New(),
		productID:  product.ID,
		variantID:  variant.ID,
	}
}

func (f *cartFixture) seedStock(t *testing.T, size, quantity int) {
	t.Helper()
	err := f.conn.Create(&models.VariantSize{VariantID: f.variantID, Size: size, Quantity: quantity}).Error
	if err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
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

func TestAddItemCreatesLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	f.seedStock(t, 40, 5)

	view, err := f.service.AddItem(ctx, f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(view.Items))
	}
	line := view.Items[0]
	if line.Quantity != 2 || line.Available != 5 {
		t.Fatalf("unexpected line %+v", line)
	}
	if view.TotalQuantity != 2 {
		t.Fatalf("expected total quantity 2, got %d", view.TotalQuantity)
	}
	if view.Subtotal != "8400000" {
		t.Fatalf("expected subtotal 8400000, got %s", view.Subtotal)
	}
}

func TestAddItemMergesAndClampsToStock(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	f.seedStock(t, 40, 4)

	input := AddItemInput{ProductID: f.productID, VariantID: f.variantID, Size: 40, Quantity: 3}
	if _, err := f.service.AddItem(ctx, f.customerID, input); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	view, err := f.service.AddItem(ctx, f.customerID, input)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(view.Items))
	}
	if view.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity clamped to 4, got %d", view.Items[0].Quantity)
	}
}

func TestAddItemRejectsSoldOutSize(t *testing.T) {
	f := newCartFixture(t)
	f.seedStock(t, 40, 0)

	_, err := f.service.AddItem(context.Background(), f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  1,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAddItemRejectsUncarriedSize(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.service.AddItem(context.Background(), f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      47,
		Quantity:  1,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAddItemRejectsVariantOfOtherProduct(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	otherProduct := &models.Product{
		ID:      uuid.New(),
		Name:    "Gazelle",
		BrandID: uuid.New(),
		Price:   2500000,
		SizeMin: 38,
		SizeMax: 44,
		Status:  true,
	}
	if err := f.conn.Create(otherProduct).Error; err != nil {
		t.Fatalf("failed to seed second product: %v", err)
	}

	_, err := f.service.AddItem(ctx, f.customerID, AddItemInput{
		ProductID: otherProduct.ID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  1,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateQuantityRejectsAboveStock(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	f.seedStock(t, 40, 3)

	view, err := f.service.AddItem(ctx, f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	_, err = f.service.UpdateQuantity(ctx, f.customerID, view.Items[0].ItemID, 10)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	appErr := pkgerrors.As(err)
	details, ok := appErr.Details().(map[string]int)
	if !ok || details["available"] != 3 {
		t.Fatalf("expected available=3 in details, got %+v", appErr.Details())
	}

	updated, err := f.service.UpdateQuantity(ctx, f.customerID, view.Items[0].ItemID, 3)
	if err != nil {
		t.Fatalf("update to available stock failed: %v", err)
	}
	if updated.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", updated.Items[0].Quantity)
	}
}

func TestRemoveItemDeletesLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	f.seedStock(t, 40, 3)

	view, err := f.service.AddItem(ctx, f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	after, err := f.service.RemoveItem(ctx, f.customerID, view.Items[0].ItemID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(after.Items))
	}

	_, err = f.service.RemoveItem(ctx, f.customerID, view.Items[0].ItemID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetByCustomerSplitsSoldOutLines(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	f.seedStock(t, 40, 2)

	if _, err := f.service.AddItem(ctx, f.customerID, AddItemInput{
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Quantity:  2,
	}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	err := f.conn.Model(&models.VariantSize{}).
		Where("variant_id = ? AND size = ?", f.variantID, 40).
		Update("quantity", 0).Error
	if err != nil {
		t.Fatalf("failed to drain stock: %v", err)
	}

	view, err := f.service.GetByCustomer(ctx, f.customerID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 || len(view.SoldOut) != 1 {
		t.Fatalf("expected line moved to sold-out group, got %+v", view)
	}
	if view.Subtotal != "0" {
		t.Fatalf("expected zero subtotal, got %s", view.Subtotal)
	}
}

func TestGetByCustomerEmptyCart(t *testing.T) {
	f := newCartFixture(t)

	view, err := f.service.GetByCustomer(context.Background(), f.customerID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 || view.TotalQuantity != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}
