package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stridewear/stridewear-backend/pkg/enums"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

const (
	recentOrderLimit = 10
	topProductLimit  = 5
)

// Overview is the staff landing page snapshot.
type Overview struct {
	OrdersByStatus map[enums.OrderStatus]int64 `json:"orders_by_status"`
	TotalOrders    int64                       `json:"total_orders"`
	TotalCustomers int64                       `json:"total_customers"`
	TotalProducts  int64                       `json:"total_products"`
	Revenue        string                      `json:"revenue"`
	RecentOrders   []RecentOrder               `json:"recent_orders"`
	TopProducts    []TopProduct                `json:"top_products"`
}

// RecentOrder is a compact row for the latest-orders table.
type RecentOrder struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Total     int               `json:"total"`
	LineCount int               `json:"line_count"`
	CreatedAt time.Time         `json:"created_at"`
}

// TopProduct is a best-seller row.
type TopProduct struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Sold int       `json:"sold"`
}

// Service assembles the dashboard snapshot.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a dashboard service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo}, nil
}

// Overview gathers order, customer, product, and revenue aggregates.
func (s *service) Overview(ctx context.Context) (*Overview, error) {
	byStatus, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}
	var totalOrders int64
	for _, count := range byStatus {
		totalOrders += count
	}

	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customers")
	}
	products, err := s.repo.CountLiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	revenue, err := s.repo.SumRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}

	recent, err := s.repo.RecentOrders(ctx, recentOrderLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recent orders")
	}
	recentRows := make([]RecentOrder, 0, len(recent))
	for i := range recent {
		recentRows = append(recentRows, RecentOrder{
			ID:        recent[i].ID,
			Status:    recent[i].Status,
			Total:     recent[i].Total,
			LineCount: len(recent[i].Lines),
			CreatedAt: recent[i].CreatedAt,
		})
	}

	top, err := s.repo.TopSoldProducts(ctx, topProductLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: top products")
	}
	topRows := make([]TopProduct, 0, len(top))
	for i := range top {
		topRows = append(topRows, TopProduct{ID: top[i].ID, Name: top[i].Name, Sold: top[i].Sold})
	}

	return &Overview{
		OrdersByStatus: byStatus,
		TotalOrders:    totalOrders,
		TotalCustomers: customers,
		TotalProducts:  products,
		Revenue:        decimal.NewFromInt(revenue).String(),
		RecentOrders:   recentRows,
		TopProducts:    topRows,
	}, nil
}
