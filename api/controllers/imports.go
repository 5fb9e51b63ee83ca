package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/api/responses"
	"github.com/stridewear/stridewear-backend/api/validators"
	"github.com/stridewear/stridewear-backend/internal/imports"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

type importDetailPayload struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Size      int       `json:"size" validate:"required,gt=0"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type importLinePayload struct {
	ProductID uuid.UUID             `json:"product_id" validate:"required"`
	Price     int                   `json:"price" validate:"required,gt=0"`
	Details   []importDetailPayload `json:"details" validate:"required,min=1,dive"`
}

type createImportPayload struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Warehouse   string              `json:"warehouse" validate:"required,max=200"`
	Supplier    string              `json:"supplier" validate:"required,max=200"`
	Description string              `json:"description,omitempty"`
	Lines       []importLinePayload `json:"lines" validate:"required,min=1,dive"`
}

// ImportCreate records a stock intake receipt and credits inventory.
func ImportCreate(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		employeeID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createImportPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := imports.CreateInput{
			Name:        payload.Name,
			Warehouse:   payload.Warehouse,
			Supplier:    payload.Supplier,
			Description: payload.Description,
		}
		for _, line := range payload.Lines {
			lineInput := imports.LineInput{ProductID: line.ProductID, Price: line.Price}
			for _, detail := range line.Details {
				lineInput.Details = append(lineInput.Details, imports.DetailInput{
					VariantID: detail.VariantID,
					Size:      detail.Size,
					Quantity:  detail.Quantity,
				})
			}
			input.Lines = append(input.Lines, lineInput)
		}

		receipt, err := svc.Create(ctx, employeeID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// ImportList returns all intake receipts, newest first.
func ImportList(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		rows, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"receipts": rows})
	}
}

// ImportDetail returns one intake receipt with lines and details.
func ImportDetail(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		receiptID, err := validators.ParseUUIDParam(r, "receiptId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		receipt, err := svc.GetDetail(ctx, receiptID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
