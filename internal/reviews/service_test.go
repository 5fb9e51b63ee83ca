package reviews

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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

type stubOrderLoader struct {
	orders map[uuid.UUID]*models.Order
}

func (s stubOrderLoader) FindDetail(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type stubStarRecomputer struct {
	recomputed []uuid.UUID
}

func (s *stubStarRecomputer) RecomputeStar(_ context.Context, productID uuid.UUID) error {
	s.recomputed = append(s.recomputed, productID)
	return nil
}

type reviewFixture struct {
	conn       *gorm.DB
	service    Service
	stars      *stubStarRecomputer
	customerID uuid.UUID
	orderID    uuid.UUID
	productID  uuid.UUID
	variantID  uuid.UUID
}

func newReviewFixture(t *testing.T, orderStatus enums.OrderStatus) *reviewFixture {
	t.Helper()
	conn := newTestDB(t)

	customerID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()

	order := &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     orderStatus,
		Lines: []models.OrderLine{{
			OrderID:   orderID,
			ProductID: productID,
			VariantID: variantID,
			Size:      40,
			Quantity:  1,
			Price:     2000000,
		}},
	}

	stars := &stubStarRecomputer{}
	service, err := NewService(
		NewRepository(conn),
		stubOrderLoader{orders: map[uuid.UUID]*models.Order{orderID: order}},
		stars,
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return &reviewFixture{
		conn:       conn,
		service:    service,
		stars:      stars,
		customerID: customerID,
		orderID:    orderID,
		productID:  productID,
		variantID:  variantID,
	}
}

func (f *reviewFixture) createInput() CreateInput {
	return CreateInput{
		OrderID:   f.orderID,
		ProductID: f.productID,
		VariantID: f.variantID,
		Size:      40,
		Rating:    5,
		Content:   "Great fit, fast delivery.",
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

func TestCreateReviewStartsPending(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)

	review, err := f.service.Create(context.Background(), f.customerID, f.createInput())
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Status != enums.ReviewStatusPending {
		t.Fatalf("expected pending status, got %s", review.Status)
	}
	if review.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", review.Rating)
	}
	if len(f.stars.recomputed) != 0 {
		t.Fatalf("expected no star recompute before approval")
	}
}

func TestCreateReviewRequiresDeliveredOrder(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusDelivery)

	_, err := f.service.Create(context.Background(), f.customerID, f.createInput())
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateReviewRejectsForeignOrder(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)

	_, err := f.service.Create(context.Background(), uuid.New(), f.createInput())
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateReviewRejectsUnknownLine(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)

	input := f.createInput()
	input.Size = 43
	_, err := f.service.Create(context.Background(), f.customerID, input)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateReviewOncePerLine(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	if _, err := f.service.Create(ctx, f.customerID, f.createInput()); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	_, err := f.service.Create(ctx, f.customerID, f.createInput())
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)

	input := f.createInput()
	input.Rating = 6
	_, err := f.service.Create(context.Background(), f.customerID, input)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestModerateApprovalRecomputesStar(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	review, err := f.service.Create(ctx, f.customerID, f.createInput())
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	approved, err := f.service.Moderate(ctx, review.ID, DecisionApprove)
	if err != nil {
		t.Fatalf("moderate failed: %v", err)
	}
	if approved.Status != enums.ReviewStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if len(f.stars.recomputed) != 1 || f.stars.recomputed[0] != f.productID {
		t.Fatalf("expected star recompute for product, got %v", f.stars.recomputed)
	}

	visible, err := f.service.ListApprovedByProduct(ctx, f.productID)
	if err != nil {
		t.Fatalf("list approved failed: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected one approved review, got %d", len(visible))
	}
}

func TestModerateHidingApprovedReviewRecomputesStar(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	review, err := f.service.Create(ctx, f.customerID, f.createInput())
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if _, err := f.service.Moderate(ctx, review.ID, DecisionApprove); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	hidden, err := f.service.Moderate(ctx, review.ID, DecisionHide)
	if err != nil {
		t.Fatalf("hide failed: %v", err)
	}
	if hidden.Status != enums.ReviewStatusHidden {
		t.Fatalf("expected hidden status, got %s", hidden.Status)
	}
	if len(f.stars.recomputed) != 2 {
		t.Fatalf("expected recompute on approval and on hiding, got %d", len(f.stars.recomputed))
	}

	visible, err := f.service.ListApprovedByProduct(ctx, f.productID)
	if err != nil {
		t.Fatalf("list approved failed: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected no visible reviews, got %d", len(visible))
	}
}

func TestModerateHidingPendingSkipsRecompute(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	review, err := f.service.Create(ctx, f.customerID, f.createInput())
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if _, err := f.service.Moderate(ctx, review.ID, DecisionHide); err != nil {
		t.Fatalf("hide failed: %v", err)
	}
	if len(f.stars.recomputed) != 0 {
		t.Fatalf("expected no recompute when hiding a pending review")
	}
}

func TestListPendingReturnsModerationQueue(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	if _, err := f.service.Create(ctx, f.customerID, f.createInput()); err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	pending, err := f.service.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Status != enums.ReviewStatusPending {
		t.Fatalf("expected one pending review, got %+v", pending)
	}
}

func TestListByCustomerReturnsAllStatuses(t *testing.T) {
	f := newReviewFixture(t, enums.OrderStatusSuccess)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.customerID, f.createInput())
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if _, err := f.service.Moderate(ctx, created.ID, DecisionHide); err != nil {
		t.Fatalf("moderate failed: %v", err)
	}

	mine, err := f.service.ListByCustomer(ctx, f.customerID)
	if err != nil {
		t.Fatalf("list by customer failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != enums.ReviewStatusHidden {
		t.Fatalf("expected the hidden review visible to its author, got %+v", mine)
	}

	other, err := f.service.ListByCustomer(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list by customer failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no reviews for a stranger, got %+v", other)
	}
}
