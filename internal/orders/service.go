package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	"github.com/stridewear/stridewear-backend/pkg/storage/images"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressLoader interface {
	FindAddressByID(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error)
}

type employeeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

type shippingQuoter interface {
	Quote(ctx context.Context, req shipping.QuoteRequest) (*shipping.Quote, error)
}

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) ([]reservation.StockResult, error)
	Release(ctx context.Context, tx *gorm.DB, lines []models.OrderLine) error
}

type reservationEngine struct{}

func (reservationEngine) Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) ([]reservation.StockResult, error) {
	return reservation.ReserveStock(ctx, tx, requests)
}

func (reservationEngine) Release(ctx context.Context, tx *gorm.DB, lines []models.OrderLine) error {
	return reservation.ReleaseStock(ctx, tx, lines)
}

// Service exposes checkout and the order delivery lifecycle.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
	Confirm(ctx context.Context, orderID, shipperID uuid.UUID) (*OrderDetail, error)
	AppendItinerary(ctx context.Context, shipperID, orderID uuid.UUID, input ItineraryInput) (*OrderDetail, error)
	ConfirmSuccess(ctx context.Context, shipperID, orderID uuid.UUID) (*OrderDetail, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*OrderDetail, error)
	List(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error)
	GetDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderSummary, error)
	DeliveryQueue(ctx context.Context, shipperID uuid.UUID) ([]OrderSummary, error)
	CompletedByShipper(ctx context.Context, shipperID uuid.UUID) ([]OrderSummary, error)
}

// CheckoutInput carries the delivery and payment choices for checkout.
type CheckoutInput struct {
	AddressID     uuid.UUID
	ServiceID     int
	PaymentMethod string
}

// ItineraryInput is one delivery progress update. Proof is required when the
// title marks delivery completion.
type ItineraryInput struct {
	Title   string
	Caption string
	Proof   *ProofUpload
}

// ProofUpload is the incoming proof-of-delivery image.
type ProofUpload struct {
	File     io.Reader
	Filename string
}

// Actor identifies who is asking for a lifecycle change.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

type service struct {
	repo        Repository
	tx          txRunner
	cartRepo    *cart.Repository
	productRepo *products.Repository
	addresses   addressLoader
	employees   employeeLoader
	quoter      shippingQuoter
	stock       stockReserver
	imageStore  images.Uploader
	imageCfg    config.ImageStoreConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	cartRepo *cart.Repository,
	productRepo *products.Repository,
	addresses addressLoader,
	employees employeeLoader,
	quoter shippingQuoter,
	imageStore images.Uploader,
	imageCfg config.ImageStoreConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address loader required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee loader required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("shipping quoter required")
	}
	if imageStore == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addresses:   addresses,
		employees:   employees,
		quoter:      quoter,
		stock:       reservationEngine{},
		imageStore:  imageStore,
		imageCfg:    imageCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Checkout converts the customer's cart into an order. Every purchasable line
// is debited atomically; lines that cannot be satisfied are reported in the
// result and stay in the cart.
func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	if input.ServiceID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery service id required")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}

	address, err := s.addresses.FindAddressByID(ctx, input.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load address")
	}
	if address.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to customer")
	}

	quote, err := s.quoter.Quote(ctx, shipping.QuoteRequest{
		ServiceID:  input.ServiceID,
		ToDistrict: address.DistrictID,
		ToWardCode: address.WardCode,
	})
	if err != nil {
		return nil, err
	}

	var result *CheckoutResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		record, err := cartRepo.GetWithItems(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		outcomes := make([]LineOutcome, 0, len(record.Items))
		requests := make([]reservation.StockRequest, 0, len(record.Items))
		productCache := map[uuid.UUID]*models.Product{}

		for _, item := range record.Items {
			outcome := LineOutcome{
				CartItemID: item.ID,
				ProductID:  item.ProductID,
				VariantID:  item.VariantID,
				Size:       item.Size,
				Quantity:   item.Quantity,
			}
			product, err := s.loadProduct(ctx, productRepo, productCache, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.Status {
				outcome.Outcome = OutcomeInsufficientStock
				outcome.Reason = "product no longer available"
				outcomes = append(outcomes, outcome)
				continue
			}
			requests = append(requests, reservation.StockRequest{
				CartItemID: item.ID,
				ProductID:  item.ProductID,
				VariantID:  item.VariantID,
				Size:       item.Size,
				Qty:        item.Quantity,
			})
			outcomes = append(outcomes, outcome)
		}

		reservations, err := s.stock.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		reservedByItem := make(map[uuid.UUID]reservation.StockResult, len(reservations))
		for _, res := range reservations {
			reservedByItem[res.CartItemID] = res
		}

		lines := make([]models.OrderLine, 0, len(record.Items))
		fulfilledItemIDs := make([]uuid.UUID, 0, len(record.Items))
		total := 0

		for i := range outcomes {
			outcome := &outcomes[i]
			if outcome.Outcome != "" {
				continue
			}
			res, ok := reservedByItem[outcome.CartItemID]
			if !ok || !res.Reserved {
				outcome.Outcome = OutcomeInsufficientStock
				outcome.Reason = res.Reason
				if outcome.Reason == "" {
					outcome.Reason = "insufficient stock"
				}
				continue
			}

			product := productCache[outcome.ProductID]
			lines = append(lines, models.OrderLine{
				ProductID: outcome.ProductID,
				VariantID: outcome.VariantID,
				Size:      outcome.Size,
				Quantity:  outcome.Quantity,
				Price:     product.Price,
				Discount:  product.Discount,
			})
			lineTotal := products.FinalPrice(product.Price, product.Discount).
				Mul(decimal.NewFromInt(int64(outcome.Quantity))).
				IntPart()
			total += int(lineTotal)

			if err := productRepo.AdjustSold(ctx, outcome.ProductID, outcome.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment sold counter")
			}

			outcome.Outcome = OutcomeFulfilled
			fulfilledItemIDs = append(fulfilledItemIDs, outcome.CartItemID)
		}

		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no purchasable lines in cart")
		}

		order := &models.Order{
			CustomerID:       customerID,
			AddressID:        address.ID,
			DeliveryMethodID: quote.ServiceID,
			DeliveryMethod:   quote.ServiceName,
			PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
			Total:            total + quote.Fee,
			ShippingFee:      quote.Fee,
			EstimatedTime:    quote.TimeMillis,
			Status:           enums.OrderStatusPlaced,
			Lines:            lines,
			Itinerary: []models.ItineraryEvent{{
				Title: TitleOrderPlaced,
				Time:  s.now(),
			}},
		}
		created, err := ordersRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if err := cartRepo.DeleteItems(ctx, fulfilledItemIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear fulfilled cart lines")
		}

		detail, err := ordersRepo.FindDetail(ctx, created.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
		}
		result = &CheckoutResult{Order: toDetail(detail, nil), Lines: outcomes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Confirm hands a placed order to a shipper and moves it into delivery.
func (s *service) Confirm(ctx context.Context, orderID, shipperID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil || shipperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and shipper id required")
	}

	employee, err := s.employees.FindByID(ctx, shipperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load employee")
	}
	if employee.Role != enums.EmployeeRoleShipper {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee is not a shipper")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if order.Status != enums.OrderStatusPlaced {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be confirmed in current state")
		}

		if err := repo.AssignShipper(ctx, order.ID, shipperID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: assign shipper")
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		return repo.AppendEvent(ctx, &models.ItineraryEvent{
			OrderID: order.ID,
			Title:   TitlePackagingComplete,
			Time:    s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, orderID)
}

// AppendItinerary records delivery progress. The completion title requires a
// proof-of-delivery image and stores its reference on the order; the status
// stays untouched until ConfirmSuccess.
func (s *service) AppendItinerary(ctx context.Context, shipperID, orderID uuid.UUID, input ItineraryInput) (*OrderDetail, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "itinerary title required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.Status != enums.OrderStatusDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in delivery")
	}
	if order.ShipperID == nil || *order.ShipperID != shipperID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this shipper")
	}

	completing := title == TitleDeliveryCompleted

	var proof *images.Asset
	if completing {
		if input.Proof == nil || input.Proof.File == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery completion requires a proof image")
		}
		proof, err = s.imageStore.Upload(ctx, input.Proof.File, input.Proof.Filename, s.imageCfg.ProofFolder)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image store: upload delivery proof")
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if completing {
			if err := repo.SetSuccessProof(ctx, order.ID, proof.URL, proof.StorageKey); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: store delivery proof")
			}
		}
		return repo.AppendEvent(ctx, &models.ItineraryEvent{
			OrderID: order.ID,
			Title:   title,
			Caption: strings.TrimSpace(input.Caption),
			Time:    s.now(),
		})
	})
	if err != nil {
		if proof != nil {
			if cleanupErr := s.imageStore.Delete(ctx, proof.StorageKey); cleanupErr != nil {
				s.logg.Warn(ctx, "image store: deleting orphaned delivery proof failed")
			}
		}
		return nil, err
	}
	return s.GetDetail(ctx, orderID)
}

// ConfirmSuccess moves an order from delivery to success. The proof must
// already be on record from the completion itinerary entry; no event is
// appended here.
func (s *service) ConfirmSuccess(ctx context.Context, shipperID, orderID uuid.UUID) (*OrderDetail, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if order.Status != enums.OrderStatusDelivery {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in delivery")
		}
		if order.ShipperID == nil || *order.ShipperID != shipperID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this shipper")
		}
		if order.SuccessProofURL == nil || *order.SuccessProofURL == "" {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery proof has not been recorded")
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusSuccess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, orderID)
}

// Cancel reverses an order: stock returns to its buckets and sold counters
// roll back. Customers may cancel their own orders before handoff; staff may
// cancel any order that has not finished. The actor and reason are cited on
// the cancellation itinerary event.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*OrderDetail, error) {
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order, err := repo.FindDetail(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		switch actor.Role {
		case enums.ActorRoleCustomer:
			if order.CustomerID != actor.ID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
			}
			if order.Status != enums.OrderStatusPlaced {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "orders in delivery can no longer be canceled")
			}
		case enums.ActorRoleStaff:
			if order.Status.Terminal() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot cancel orders")
		}

		if err := s.stock.Release(ctx, tx, order.Lines); err != nil {
			return err
		}
		for _, line := range order.Lines {
			if err := productRepo.AdjustSold(ctx, line.ProductID, -line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement sold counter")
			}
		}

		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancel); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		return repo.AppendEvent(ctx, &models.ItineraryEvent{
			OrderID: order.ID,
			Title:   TitleOrderCanceled,
			Caption: "canceled by " + string(actor.Role) + ": " + reason,
			Time:    s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, orderID)
}

// List returns all orders for the back office.
func (s *service) List(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error) {
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return toSummaries(rows), nil
}

// GetDetail returns the full order with per-line review flags.
func (s *service) GetDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order detail")
	}
	reviews, err := s.repo.FindReviewsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order reviews")
	}
	return toDetail(order, reviews), nil
}

// ListByCustomer returns the customer's purchase history.
func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderSummary, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customer orders")
	}
	return toSummaries(rows), nil
}

// DeliveryQueue returns the shipper's active deliveries.
func (s *service) DeliveryQueue(ctx context.Context, shipperID uuid.UUID) ([]OrderSummary, error) {
	rows, err := s.repo.ListByShipperAndStatus(ctx, shipperID, enums.OrderStatusDelivery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list delivery queue")
	}
	return toSummaries(rows), nil
}

// CompletedByShipper returns the shipper's finished deliveries.
func (s *service) CompletedByShipper(ctx context.Context, shipperID uuid.UUID) ([]OrderSummary, error) {
	rows, err := s.repo.ListByShipperAndStatus(ctx, shipperID, enums.OrderStatusSuccess)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list completed deliveries")
	}
	return toSummaries(rows), nil
}

func (s *service) loadProduct(ctx context.Context, repo *products.Repository, cache map[uuid.UUID]*models.Product, productID uuid.UUID) (*models.Product, error) {
	if product, ok := cache[productID]; ok {
		return product, nil
	}
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cache[productID] = nil
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	cache[productID] = product
	return product, nil
}

func toSummaries(rows []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(rows))
	for i := range rows {
		out = append(out, toSummary(&rows[i]))
	}
	return out
}
