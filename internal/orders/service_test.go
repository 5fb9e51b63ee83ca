package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/internal/cart"
	"github.com/stridewear/stridewear-backend/internal/orders/reservation"
	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/internal/shipping"
	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
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

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type stubAddressLoader struct {
	address *models.CustomerAddress
}

func (s stubAddressLoader) FindAddressByID(_ context.Context, id uuid.UUID) (*models.CustomerAddress, error) {
	if s.address == nil || s.address.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.address, nil
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

type stubQuoter struct {
	quote *shipping.Quote
	err   error
}

func (s stubQuoter) Quote(context.Context, shipping.QuoteRequest) (*shipping.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

type stubImageStore struct {
	uploads int
	deleted []string
	err     error
}

func (s *stubImageStore) Upload(_ context.Context, _ io.Reader, filename, folder string) (*images.Asset, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploads++
	return &images.Asset{
		URL:        "https://img.test/" + folder + "/" + filename,
		StorageKey: folder + "/" + filename,
	}, nil
}

func (s *stubImageStore) Delete(_ context.Context, storageKey string) error {
	s.deleted = append(s.deleted, storageKey)
	return nil
}

// partialReserver answers only the first request, leaving the rest without a
// result row.
type partialReserver struct{}

func (partialReserver) Reserve(_ context.Context, _ *gorm.DB, requests []reservation.StockRequest) ([]reservation.StockResult, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	return []reservation.StockResult{{CartItemID: requests[0].CartItemID, Reserved: true}}, nil
}

func (partialReserver) Release(context.Context, *gorm.DB, []models.OrderLine) error {
	return nil
}

type orderFixture struct {
	conn       *gorm.DB
	service    Service
	customerID uuid.UUID
	address    *models.CustomerAddress
	employees  map[uuid.UUID]*models.Employee
	imageStore *stubImageStore
	productID  uuid.UUID
	variantID  uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	conn := newTestDB(t)

	customerID := uuid.New()
	address := &models.CustomerAddress{
		ID:         uuid.New(),
		CustomerID: customerID,
		Receiver:   "Linh Tran",
		Phone:      "0900000001",
		ProvinceID: 202,
		DistrictID: 1454,
		WardCode:   "21012",
		Detail:     "12 Nguyen Trai",
	}

	logoURL := "https://img.test/nike.png"
	brand := &models.Brand{ID: uuid.New(), Name: "Nike", LogoURL: &logoURL}
	if err := conn.Create(brand).Error; err != nil {
		t.Fatalf("failed to seed brand: %v", err)
	}
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Air Zoom Pegasus",
		BrandID:  brand.ID,
		Price:    2000000,
		Discount: 10,
		SizeMin:  38,
		SizeMax:  44,
		Status:   true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	variant := &models.ProductVariant{ID: uuid.New(), ProductID: product.ID, Name: "Black/White", Status: true}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}

	imageStore := &stubImageStore{}
	employees := map[uuid.UUID]*models.Employee{}

	service, err := NewService(
		NewRepository(conn),
		gormTx{db: conn},
		cart.NewRepository(conn),
		products.NewRepository(conn),
		stubAddressLoader{address: address},
		stubEmployeeLoader{employees: employees},
		stubQuoter{quote: &shipping.Quote{ServiceID: 53320, ServiceName: "Standard", Fee: 35000, TimeMillis: 86400000}},
		imageStore,
		config.ImageStoreConfig{ProofFolder: "test/proof"},
		testLogger(),
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return &orderFixture{
		conn:       conn,
		service:    service,
		customerID: customerID,
		address:    address,
		employees:  employees,
		imageStore: imageStore,
		productID:  product.ID,
		variantID:  variant.ID,
	}
}

func (f *orderFixture) seedStock(t *testing.T, size, quantity int) {
	t.Helper()
	err := f.conn.Create(&models.VariantSize{VariantID: f.variantID, Size: size, Quantity: quantity}).Error
	if err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
}

func (f *orderFixture) seedCartItem(t *testing.T, size, quantity int) uuid.UUID {
	t.Helper()
	cartRepo := cart.NewRepository(f.conn)
	record, err := cartRepo.GetOrCreate(context.Background(), f.customerID)
	if err != nil {
		t.Fatalf("failed to create cart: %v", err)
	}
	item := &models.CartItem{
		CartID:    record.ID,
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      size,
		Quantity:  quantity,
	}
	if err := f.conn.Create(item).Error; err != nil {
		t.Fatalf("failed to seed cart item: %v", err)
	}
	return item.ID
}

func (f *orderFixture) seedShipper(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.employees[id] = &models.Employee{ID: id, Name: "Shipper", Email: "shipper@test", Role: enums.EmployeeRoleShipper}
	return id
}

func (f *orderFixture) seedOrder(t *testing.T, status enums.OrderStatus, shipperID *uuid.UUID) uuid.UUID {
	t.Helper()
	order := &models.Order{
		CustomerID:       f.customerID,
		AddressID:        f.address.ID,
		DeliveryMethodID: 53320,
		DeliveryMethod:   "Standard",
		PaymentMethod:    "cod",
		Total:            3635000,
		ShippingFee:      35000,
		EstimatedTime:    86400000,
		Status:           status,
		ShipperID:        shipperID,
		Lines: []models.OrderLine{{
			ProductID: f.productID,
			VariantID: f.variantID,
			Size:      40,
			Quantity:  2,
			Price:     2000000,
			Discount:  10,
		}},
		Itinerary: []models.ItineraryEvent{{Title: TitleOrderPlaced}},
	}
	if err := f.conn.Create(order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order.ID
}

func (f *orderFixture) stockQuantity(t *testing.T, size int) int {
	t.Helper()
	var bucket models.VariantSize
	err := f.conn.Where("variant_id = ? AND size = ?", f.variantID, size).First(&bucket).Error
	if err != nil {
		t.Fatalf("failed to load stock bucket: %v", err)
	}
	return bucket.Quantity
}

func (f *orderFixture) soldCount(t *testing.T) int {
	t.Helper()
	var product models.Product
	if err := f.conn.First(&product, "id = ?", f.productID).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return product.Sold
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

func TestCheckoutSplitsFulfilledAndShortLines(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.seedStock(t, 40, 5)
	f.seedStock(t, 42, 1)
	fulfilledItem := f.seedCartItem(t, 40, 2)
	shortItem := f.seedCartItem(t, 42, 3)

	result, err := f.service.Checkout(ctx, f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	outcomes := map[uuid.UUID]LineOutcome{}
	for _, line := range result.Lines {
		outcomes[line.CartItemID] = line
	}
	if outcomes[fulfilledItem].Outcome != OutcomeFulfilled {
		t.Fatalf("expected fulfilled outcome, got %+v", outcomes[fulfilledItem])
	}
	if outcomes[shortItem].Outcome != OutcomeInsufficientStock {
		t.Fatalf("expected insufficient outcome, got %+v", outcomes[shortItem])
	}

	if len(result.Order.Lines) != 1 {
		t.Fatalf("expected one order line, got %d", len(result.Order.Lines))
	}
	// 2,000,000 minus 10% discount, times two, plus the 35,000 fee.
	if result.Order.Total != 3635000 {
		t.Fatalf("expected total 3635000, got %d", result.Order.Total)
	}
	if result.Order.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected placed status, got %s", result.Order.Status)
	}
	if len(result.Order.Itinerary) != 1 || result.Order.Itinerary[0].Title != TitleOrderPlaced {
		t.Fatalf("expected a single %q itinerary entry, got %+v", TitleOrderPlaced, result.Order.Itinerary)
	}

	if got := f.stockQuantity(t, 40); got != 3 {
		t.Fatalf("expected stock 3 after debit, got %d", got)
	}
	if got := f.stockQuantity(t, 42); got != 1 {
		t.Fatalf("expected short bucket untouched, got %d", got)
	}
	if got := f.soldCount(t); got != 2 {
		t.Fatalf("expected sold counter 2, got %d", got)
	}

	record, err := cart.NewRepository(f.conn).GetWithItems(ctx, f.customerID)
	if err != nil {
		t.Fatalf("failed to reload cart: %v", err)
	}
	if len(record.Items) != 1 || record.Items[0].ID != shortItem {
		t.Fatalf("expected only the short line to remain in the cart, got %+v", record.Items)
	}
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	f := newOrderFixture(t)
	f.address.CustomerID = uuid.New()

	_, err := f.service.Checkout(context.Background(), f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.Checkout(context.Background(), f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutWithNoPurchasableLinesRollsBack(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.seedStock(t, 40, 1)
	f.seedCartItem(t, 40, 5)

	_, err := f.service.Checkout(ctx, f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	if got := f.stockQuantity(t, 40); got != 1 {
		t.Fatalf("expected stock untouched after rollback, got %d", got)
	}
	var count int64
	if err := f.conn.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no order rows, got %d", count)
	}
}

func TestCheckoutSkipsRetiredProducts(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.seedStock(t, 40, 5)
	f.seedCartItem(t, 40, 1)
	err := f.conn.Model(&models.Product{}).
		Where("id = ?", f.productID).
		Update("status", false).Error
	if err != nil {
		t.Fatalf("failed to retire product: %v", err)
	}

	_, err = f.service.Checkout(ctx, f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCheckoutExplainsUnreservedLines(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first := f.seedCartItem(t, 40, 1)
	second := f.seedCartItem(t, 41, 1)
	f.service.(*service).stock = partialReserver{}

	result, err := f.service.Checkout(ctx, f.customerID, CheckoutInput{
		AddressID:     f.address.ID,
		ServiceID:     53320,
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	outcomes := map[uuid.UUID]LineOutcome{}
	for _, line := range result.Lines {
		outcomes[line.CartItemID] = line
	}
	if outcomes[first].Outcome != OutcomeFulfilled {
		t.Fatalf("expected first line fulfilled, got %+v", outcomes[first])
	}
	dropped := outcomes[second]
	if dropped.Outcome != OutcomeInsufficientStock {
		t.Fatalf("expected unanswered line marked insufficient, got %+v", dropped)
	}
	if dropped.Reason == "" {
		t.Fatalf("expected a reason on the unanswered line, got %+v", dropped)
	}
}

func TestConfirmAssignsShipperAndStartsDelivery(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusPlaced, nil)

	detail, err := f.service.Confirm(ctx, orderID, shipperID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if detail.Status != enums.OrderStatusDelivery {
		t.Fatalf("expected delivery status, got %s", detail.Status)
	}
	if detail.ShipperID == nil || *detail.ShipperID != shipperID {
		t.Fatalf("expected shipper %s assigned, got %v", shipperID, detail.ShipperID)
	}
	last := detail.Itinerary[len(detail.Itinerary)-1]
	if last.Title != TitlePackagingComplete {
		t.Fatalf("expected %q itinerary entry, got %q", TitlePackagingComplete, last.Title)
	}
}

func TestConfirmRejectsStaffAsShipper(t *testing.T) {
	f := newOrderFixture(t)

	staffID := uuid.New()
	f.employees[staffID] = &models.Employee{ID: staffID, Name: "Staff", Email: "staff@test", Role: enums.EmployeeRoleStaff}
	orderID := f.seedOrder(t, enums.OrderStatusPlaced, nil)

	_, err := f.service.Confirm(context.Background(), orderID, staffID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestConfirmRejectsOrdersAlreadyInDelivery(t *testing.T) {
	f := newOrderFixture(t)

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	_, err := f.service.Confirm(context.Background(), orderID, shipperID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAppendItineraryRecordsProgress(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	detail, err := f.service.AppendItinerary(ctx, shipperID, orderID, ItineraryInput{
		Title:   "arrived at sorting hub",
		Caption: "District 1 hub",
	})
	if err != nil {
		t.Fatalf("append itinerary failed: %v", err)
	}
	if detail.Status != enums.OrderStatusDelivery {
		t.Fatalf("expected order to stay in delivery, got %s", detail.Status)
	}
	last := detail.Itinerary[len(detail.Itinerary)-1]
	if last.Title != "arrived at sorting hub" || last.Caption != "District 1 hub" {
		t.Fatalf("unexpected itinerary entry %+v", last)
	}
	if f.imageStore.uploads != 0 {
		t.Fatalf("expected no proof upload for a progress entry")
	}
}

func TestAppendItineraryCompletionRequiresProof(t *testing.T) {
	f := newOrderFixture(t)

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	_, err := f.service.AppendItinerary(context.Background(), shipperID, orderID, ItineraryInput{
		Title: TitleDeliveryCompleted,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAppendItineraryCompletionStoresProofWithoutClosing(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	detail, err := f.service.AppendItinerary(ctx, shipperID, orderID, ItineraryInput{
		Title: TitleDeliveryCompleted,
		Proof: &ProofUpload{File: strings.NewReader("jpeg-bytes"), Filename: "proof.jpg"},
	})
	if err != nil {
		t.Fatalf("append completion failed: %v", err)
	}
	if detail.Status != enums.OrderStatusDelivery {
		t.Fatalf("expected order to stay in delivery until confirmation, got %s", detail.Status)
	}
	if detail.SuccessProofURL == nil || *detail.SuccessProofURL == "" {
		t.Fatalf("expected proof url recorded")
	}
	if f.imageStore.uploads != 1 {
		t.Fatalf("expected one proof upload, got %d", f.imageStore.uploads)
	}
	last := detail.Itinerary[len(detail.Itinerary)-1]
	if last.Title != TitleDeliveryCompleted {
		t.Fatalf("expected %q itinerary entry, got %q", TitleDeliveryCompleted, last.Title)
	}
}

func TestConfirmSuccessClosesDeliveredOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	delivered, err := f.service.AppendItinerary(ctx, shipperID, orderID, ItineraryInput{
		Title: TitleDeliveryCompleted,
		Proof: &ProofUpload{File: strings.NewReader("jpeg-bytes"), Filename: "proof.jpg"},
	})
	if err != nil {
		t.Fatalf("append completion failed: %v", err)
	}

	detail, err := f.service.ConfirmSuccess(ctx, shipperID, orderID)
	if err != nil {
		t.Fatalf("confirm success failed: %v", err)
	}
	if detail.Status != enums.OrderStatusSuccess {
		t.Fatalf("expected success status, got %s", detail.Status)
	}
	if len(detail.Itinerary) != len(delivered.Itinerary) {
		t.Fatalf("expected confirmation to append no itinerary entry, got %+v", detail.Itinerary)
	}
}

func TestConfirmSuccessRequiresRecordedProof(t *testing.T) {
	f := newOrderFixture(t)

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	_, err := f.service.ConfirmSuccess(context.Background(), shipperID, orderID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAppendItineraryRejectsForeignShipper(t *testing.T) {
	f := newOrderFixture(t)

	assigned := f.seedShipper(t)
	other := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &assigned)

	_, err := f.service.AppendItinerary(context.Background(), other, orderID, ItineraryInput{
		Title: "arrived at sorting hub",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCancelByCustomerRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.seedStock(t, 40, 3)
	if err := products.NewRepository(f.conn).AdjustSold(ctx, f.productID, 2); err != nil {
		t.Fatalf("failed to seed sold counter: %v", err)
	}
	orderID := f.seedOrder(t, enums.OrderStatusPlaced, nil)

	detail, err := f.service.Cancel(ctx, Actor{ID: f.customerID, Role: enums.ActorRoleCustomer}, orderID, "changed my mind")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if detail.Status != enums.OrderStatusCancel {
		t.Fatalf("expected cancel status, got %s", detail.Status)
	}
	if got := f.stockQuantity(t, 40); got != 5 {
		t.Fatalf("expected stock credited back to 5, got %d", got)
	}
	if got := f.soldCount(t); got != 0 {
		t.Fatalf("expected sold counter rolled back to 0, got %d", got)
	}
	last := detail.Itinerary[len(detail.Itinerary)-1]
	if last.Title != TitleOrderCanceled {
		t.Fatalf("expected %q itinerary entry, got %q", TitleOrderCanceled, last.Title)
	}
	if last.Caption != "canceled by customer: changed my mind" {
		t.Fatalf("expected cancellation event to cite party and reason, got %q", last.Caption)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newOrderFixture(t)

	orderID := f.seedOrder(t, enums.OrderStatusPlaced, nil)

	_, err := f.service.Cancel(context.Background(), Actor{ID: f.customerID, Role: enums.ActorRoleCustomer}, orderID, "  ")
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCancelByCustomerRejectedAfterHandoff(t *testing.T) {
	f := newOrderFixture(t)

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusDelivery, &shipperID)

	_, err := f.service.Cancel(context.Background(), Actor{ID: f.customerID, Role: enums.ActorRoleCustomer}, orderID, "too slow")
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelByStaffRejectedOnceFinalized(t *testing.T) {
	f := newOrderFixture(t)

	shipperID := f.seedShipper(t)
	orderID := f.seedOrder(t, enums.OrderStatusSuccess, &shipperID)

	_, err := f.service.Cancel(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, orderID, "fraud check")
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelRejectsForeignCustomer(t *testing.T) {
	f := newOrderFixture(t)

	orderID := f.seedOrder(t, enums.OrderStatusPlaced, nil)

	_, err := f.service.Cancel(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleCustomer}, orderID, "not mine")
	requireCode(t, err, pkgerrors.CodeForbidden)
}
