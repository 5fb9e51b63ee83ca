package imports

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
	"github.com/stridewear/stridewear-backend/pkg/enums"
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

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type stubEmployeeLoader struct {
	employees map[uuid.UUID]*models.Employee
}

func (s stubEmployeeLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	employee, ok := s.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return employee, nil
}

type importFixture struct {
	conn       *gorm.DB
	service    Service
	employeeID uuid.UUID
	productID  uuid.UUID
	variantID  uuid.UUID
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	conn := newTestDB(t)

	product := &models.Product{
		ID:      uuid.New(),
		Name:    "Chuck 70 High",
		BrandID: uuid.New(),
		Price:   1500000,
		SizeMin: 38,
		SizeMax: 44,
		Status:  true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	variant := &models.ProductVariant{ID: uuid.New(), ProductID: product.ID, Name: "Parchment", Status: true}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}
	err := conn.Create(&models.VariantSize{VariantID: variant.ID, Size: 40, Quantity: 2}).Error
	if err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	employeeID := uuid.New()
	employees := map[uuid.UUID]*models.Employee{
		employeeID: {ID: employeeID, Name: "Staff", Email: "staff@test", Role: enums.EmployeeRoleStaff},
	}

	service, err := NewService(
		NewRepository(conn),
		gormTx{db: conn},
		products.NewRepository(conn),
		variants.NewRepository(conn),
		stubEmployeeLoader{employees: employees},
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return &importFixture{
		conn:       conn,
		service:    service,
		employeeID: employeeID,
		productID:  product.ID,
		variantID:  variant.ID,
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

func TestCreateReceiptCreditsStockAndResetsPrice(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	receipt, err := f.service.Create(ctx, f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: f.productID,
			Price:     1650000,
			Details: []DetailInput{{
				VariantID: f.variantID,
				Size:      40,
				Quantity:  10,
			}},
		}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	if receipt.Total != 16500000 {
		t.Fatalf("expected total 16500000, got %d", receipt.Total)
	}
	if receipt.EmployeeID != f.employeeID {
		t.Fatalf("expected receipt attributed to employee")
	}
	if len(receipt.Lines) != 1 || len(receipt.Lines[0].Details) != 1 {
		t.Fatalf("unexpected receipt shape %+v", receipt)
	}

	var bucket models.VariantSize
	err = f.conn.Where("variant_id = ? AND size = ?", f.variantID, 40).First(&bucket).Error
	if err != nil {
		t.Fatalf("failed to load bucket: %v", err)
	}
	if bucket.Quantity != 12 {
		t.Fatalf("expected bucket credited to 12, got %d", bucket.Quantity)
	}

	var product models.Product
	if err := f.conn.First(&product, "id = ?", f.productID).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	if product.Price != 1650000 {
		t.Fatalf("expected product price reset to 1650000, got %d", product.Price)
	}
}

func TestCreateReceiptRejectsUncarriedSize(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.service.Create(context.Background(), f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: f.productID,
			Price:     1650000,
			Details: []DetailInput{{
				VariantID: f.variantID,
				Size:      47,
				Quantity:  10,
			}},
		}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	var bucket models.VariantSize
	err = f.conn.Where("variant_id = ? AND size = ?", f.variantID, 40).First(&bucket).Error
	if err != nil {
		t.Fatalf("failed to load bucket: %v", err)
	}
	if bucket.Quantity != 2 {
		t.Fatalf("expected bucket untouched after rollback, got %d", bucket.Quantity)
	}
}

func TestCreateReceiptRejectsVariantOfOtherProduct(t *testing.T) {
	f := newImportFixture(t)

	other := &models.Product{
		ID:      uuid.New(),
		Name:    "One Star Pro",
		BrandID: uuid.New(),
		Price:   1800000,
		SizeMin: 38,
		SizeMax: 44,
		Status:  true,
	}
	if err := f.conn.Create(other).Error; err != nil {
		t.Fatalf("failed to seed second product: %v", err)
	}

	_, err := f.service.Create(context.Background(), f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: other.ID,
			Price:     1800000,
			Details: []DetailInput{{
				VariantID: f.variantID,
				Size:      40,
				Quantity:  5,
			}},
		}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateReceiptRequiresKnownEmployee(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.service.Create(context.Background(), uuid.New(), CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: f.productID,
			Price:     1650000,
			Details:   []DetailInput{{VariantID: f.variantID, Size: 40, Quantity: 1}},
		}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateReceiptValidatesShape(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.employeeID, CreateInput{
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines:     []LineInput{{ProductID: f.productID, Details: []DetailInput{{VariantID: f.variantID, Size: 40, Quantity: 1}}}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.service.Create(ctx, f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.service.Create(ctx, f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: f.productID,
			Price:     1650000,
			Details:   []DetailInput{{VariantID: f.variantID, Size: 40, Quantity: 0}},
		}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestListReturnsReceipts(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.employeeID, CreateInput{
		Name:      "August restock",
		Warehouse: "HCM-01",
		Supplier:  "Converse VN",
		Lines: []LineInput{{
			ProductID: f.productID,
			Price:     1650000,
			Details:   []DetailInput{{VariantID: f.variantID, Size: 40, Quantity: 3}},
		}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	rows, err := f.service.List(ctx)
	if err != nil {
		t.Fatalf("list receipts failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("expected the created receipt, got %+v", rows)
	}

	detail, err := f.service.GetDetail(ctx, created.ID)
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if detail.Total != 4950000 {
		t.Fatalf("expected total 4950000, got %d", detail.Total)
	}
}
