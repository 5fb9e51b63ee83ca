package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the staff dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

// CountOrdersByStatus groups all orders by lifecycle status.
func (r *Repository) CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// CountCustomers returns the number of registered customers.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

// CountLiveProducts returns the number of products not soft-deleted.
func (r *Repository) CountLiveProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("deleted_at IS NULL").
		Count(&count).
		Error
	return count, err
}

// SumRevenue totals the order amounts of delivered orders.
func (r *Repository) SumRevenue(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total)").
		Where("status = ?", enums.OrderStatusSuccess).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// RecentOrders returns the latest orders with their lines.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// TopSoldProducts returns the best selling live products.
func (r *Repository) TopSoldProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("sold DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}
