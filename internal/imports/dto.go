package imports

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// ReceiptDTO is the API shape of an import receipt.
type ReceiptDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Warehouse   string    `json:"warehouse"`
	Supplier    string    `json:"supplier"`
	Description string    `json:"description,omitempty"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	Total       int       `json:"total"`
	Lines       []LineDTO `json:"lines"`
	CreatedAt   time.Time `json:"created_at"`
}

// LineDTO is one product section on a receipt.
type LineDTO struct {
	ProductID uuid.UUID   `json:"product_id"`
	Price     int         `json:"price"`
	Details   []DetailDTO `json:"details"`
}

// DetailDTO is one credited size bucket.
type DetailDTO struct {
	VariantID uuid.UUID `json:"variant_id"`
	Size      int       `json:"size"`
	Quantity  int       `json:"quantity"`
}

func toDTO(receipt *models.ImportReceipt) *ReceiptDTO {
	if receipt == nil {
		return nil
	}
	dto := &ReceiptDTO{
		ID:          receipt.ID,
		Name:        receipt.Name,
		Warehouse:   receipt.Warehouse,
		Supplier:    receipt.Supplier,
		Description: receipt.Description,
		EmployeeID:  receipt.EmployeeID,
		Total:       receipt.Total,
		CreatedAt:   receipt.CreatedAt,
	}
	for _, line := range receipt.Lines {
		lineDTO := LineDTO{ProductID: line.ProductID, Price: line.Price}
		for _, detail := range line.Details {
			lineDTO.Details = append(lineDTO.Details, DetailDTO{
				VariantID: detail.VariantID,
				Size:      detail.Size,
				Quantity:  detail.Quantity,
			})
		}
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}
