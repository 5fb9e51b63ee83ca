package dashboard

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
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

func seedOrder(t *testing.T, conn *gorm.DB, status enums.OrderStatus, total, lineCount int, createdAt time.Time) uuid.UUID {
	t.Helper()
	order := &models.Order{
		ID:             uuid.New(),
		CustomerID:     uuid.New(),
		AddressID:      uuid.New(),
		DeliveryMethod: "standard",
		PaymentMethod:  "cod",
		Total:          total,
		ShippingFee:    35000,
		Status:         status,
		CreatedAt:      createdAt,
	}
	for i := 0; i < lineCount; i++ {
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID: uuid.New(),
			VariantID: uuid.New(),
			Size:      40 + i,
			Quantity:  1,
			Price:     total / lineCount,
		})
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order.ID
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, sold int, retired bool) {
	t.Helper()
	product := &models.Product{
		ID:      uuid.New(),
		Name:    name,
		BrandID: uuid.New(),
		Price:   2000000,
		Sold:    sold,
		SizeMin: 38,
		SizeMax: 44,
		Status:  true,
	}
	if retired {
		now := time.Now()
		product.DeletedAt = &now
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
}

func TestOverviewAggregatesCounts(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seedOrder(t, conn, enums.OrderStatusPlaced, 1000000, 1, base)
	seedOrder(t, conn, enums.OrderStatusSuccess, 2500000, 2, base.Add(time.Minute))
	seedOrder(t, conn, enums.OrderStatusSuccess, 1500000, 1, base.Add(2*time.Minute))
	seedOrder(t, conn, enums.OrderStatusCancel, 900000, 1, base.Add(3*time.Minute))

	for i := 0; i < 3; i++ {
		customer := &models.Customer{
			ID:           uuid.New(),
			Name:         fmt.Sprintf("Customer %d", i),
			Email:        fmt.Sprintf("customer%d@test", i),
			PasswordHash: "x",
		}
		if err := conn.Create(customer).Error; err != nil {
			t.Fatalf("failed to seed customer: %v", err)
		}
	}

	seedProduct(t, conn, "Pegasus 41", 12, false)
	seedProduct(t, conn, "Vomero 18", 30, false)
	seedProduct(t, conn, "Retired Shoe", 99, true)

	service, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	overview, err := service.Overview(ctx)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}

	if overview.TotalOrders != 4 {
		t.Fatalf("expected 4 orders, got %d", overview.TotalOrders)
	}
	if overview.OrdersByStatus[enums.OrderStatusSuccess] != 2 {
		t.Fatalf("expected 2 delivered orders, got %d", overview.OrdersByStatus[enums.OrderStatusSuccess])
	}
	if overview.TotalCustomers != 3 {
		t.Fatalf("expected 3 customers, got %d", overview.TotalCustomers)
	}
	if overview.TotalProducts != 2 {
		t.Fatalf("expected retired product excluded, got %d", overview.TotalProducts)
	}
	if overview.Revenue != "4000000" {
		t.Fatalf("expected revenue from delivered orders only, got %s", overview.Revenue)
	}
}

func TestOverviewOrdersRecentFirstWithLineCounts(t *testing.T) {
	conn := newTestDB(t)

	base := time.Now().Add(-time.Hour)
	seedOrder(t, conn, enums.OrderStatusPlaced, 1000000, 1, base)
	newest := seedOrder(t, conn, enums.OrderStatusDelivery, 3000000, 3, base.Add(30*time.Minute))

	service, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	overview, err := service.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}

	if len(overview.RecentOrders) != 2 {
		t.Fatalf("expected 2 recent orders, got %d", len(overview.RecentOrders))
	}
	if overview.RecentOrders[0].ID != newest {
		t.Fatalf("expected newest order first, got %+v", overview.RecentOrders[0])
	}
	if overview.RecentOrders[0].LineCount != 3 {
		t.Fatalf("expected 3 lines on the newest order, got %d", overview.RecentOrders[0].LineCount)
	}
}

func TestOverviewRanksTopProductsBySold(t *testing.T) {
	conn := newTestDB(t)

	seedProduct(t, conn, "Pegasus 41", 12, false)
	seedProduct(t, conn, "Vomero 18", 30, false)
	seedProduct(t, conn, "Structure 25", 7, false)

	service, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	overview, err := service.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}

	if len(overview.TopProducts) != 3 {
		t.Fatalf("expected 3 top products, got %d", len(overview.TopProducts))
	}
	if overview.TopProducts[0].Name != "Vomero 18" || overview.TopProducts[0].Sold != 30 {
		t.Fatalf("expected best seller first, got %+v", overview.TopProducts[0])
	}
}

func TestOverviewOnEmptyDatabase(t *testing.T) {
	conn := newTestDB(t)

	service, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	overview, err := service.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}

	if overview.TotalOrders != 0 || overview.TotalCustomers != 0 || overview.TotalProducts != 0 {
		t.Fatalf("expected zero counts, got %+v", overview)
	}
	if overview.Revenue != "0" {
		t.Fatalf("expected zero revenue, got %s", overview.Revenue)
	}
	if len(overview.RecentOrders) != 0 || len(overview.TopProducts) != 0 {
		t.Fatalf("expected empty lists, got %+v", overview)
	}
}
