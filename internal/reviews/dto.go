package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// ReviewDTO is the API shape of a review.
type ReviewDTO struct {
	ID         uuid.UUID          `json:"id"`
	ProductID  uuid.UUID          `json:"product_id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	OrderID    uuid.UUID          `json:"order_id"`
	VariantID  uuid.UUID          `json:"variant_id"`
	Size       int                `json:"size"`
	Rating     int                `json:"rating"`
	Content    string             `json:"content,omitempty"`
	Status     enums.ReviewStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

func toDTO(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         review.ID,
		ProductID:  review.ProductID,
		CustomerID: review.CustomerID,
		OrderID:    review.OrderID,
		VariantID:  review.VariantID,
		Size:       review.Size,
		Rating:     review.Rating,
		Content:    review.Content,
		Status:     review.Status,
		CreatedAt:  review.CreatedAt,
	}
}

func toDTOs(rows []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
