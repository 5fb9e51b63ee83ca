package reservation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// StockRequest asks for one cart line's quantity to be debited from its size
// bucket.
type StockRequest struct {
	CartItemID uuid.UUID
	ProductID  uuid.UUID
	VariantID  uuid.UUID
	Size       int
	Qty        int
}

// StockResult reports whether the debit happened. Reason is set only on
// failure.
type StockResult struct {
	CartItemID uuid.UUID
	Reserved   bool
	Reason     string
}

// ReserveStock debits each requested bucket inside the caller's transaction.
// The quantity guard in the WHERE clause keeps concurrent checkouts from
// overselling; a request that cannot be satisfied is reported rather than
// failing the batch.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		if req.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be at least 1")
		}

		update := tx.WithContext(ctx).
			Model(&models.VariantSize{}).
			Where("variant_id = ? AND size = ? AND quantity >= ?", req.VariantID, req.Size, req.Qty).
			Update("quantity", gorm.Expr("quantity - ?", req.Qty))
		if update.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, update.Error, "db: reserve stock")
		}

		result := StockResult{CartItemID: req.CartItemID, Reserved: update.RowsAffected > 0}
		if !result.Reserved {
			result.Reason = "insufficient stock"
		}
		results = append(results, result)
	}
	return results, nil
}

// ReleaseStock credits each order line's quantity back to its bucket, used
// when an order is canceled.
func ReleaseStock(ctx context.Context, tx *gorm.DB, lines []models.OrderLine) error {
	for _, line := range lines {
		err := tx.WithContext(ctx).
			Model(&models.VariantSize{}).
			Where("variant_id = ? AND size = ?", line.VariantID, line.Size).
			Update("quantity", gorm.Expr("quantity + ?", line.Quantity)).
			Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release stock")
		}
	}
	return nil
}
