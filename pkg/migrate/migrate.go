package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// Run applies the schema for every registered model.
func Run(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db connection is required")
	}
	if err := conn.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func allModels() []any {
	return []any{
		&models.Customer{},
		&models.CustomerAddress{},
		&models.Employee{},
		&models.Brand{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.VariantSize{},
		&models.VariantImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.ItineraryEvent{},
		&models.Review{},
		&models.FavoriteItem{},
		&models.ImportReceipt{},
		&models.ImportLine{},
		&models.ImportDetail{},
	}
}
