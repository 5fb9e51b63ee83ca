package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/api/responses"
	"github.com/stridewear/stridewear-backend/api/validators"
	"github.com/stridewear/stridewear-backend/internal/products"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

type createProductPayload struct {
	Name        string      `json:"name" validate:"required,max=200"`
	BrandID     uuid.UUID   `json:"brand_id" validate:"required"`
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required,min=1"`
	Price       int         `json:"price" validate:"required,gt=0"`
	Discount    int         `json:"discount" validate:"gte=0,lte=100"`
	SizeMin     int         `json:"size_min" validate:"required,gt=0"`
	SizeMax     int         `json:"size_max" validate:"required,gt=0"`
	Gender      []string    `json:"gender" validate:"required,min=1"`
	Description string      `json:"description,omitempty"`
	Status      bool        `json:"status"`
}

type updateProductPayload struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,max=200"`
	BrandID     *uuid.UUID   `json:"brand_id,omitempty"`
	CategoryIDs *[]uuid.UUID `json:"category_ids,omitempty" validate:"omitempty,min=1"`
	Price       *int         `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount    *int         `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Gender      *[]string    `json:"gender,omitempty" validate:"omitempty,min=1"`
	Description *string      `json:"description,omitempty"`
	Status      *bool        `json:"status,omitempty"`
}

// ProductList returns the browse catalog with optional filters.
func ProductList(svc products.Service, logg *logger.Logger, includeAll bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input := products.ListInput{
			Gender:     strings.TrimSpace(r.URL.Query().Get("gender")),
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			IncludeAll: includeAll,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("brand_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "brand_id must be a uuid"))
				return
			}
			input.BrandID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a uuid"))
				return
			}
			input.CategoryID = &id
		}
		if min, err := validators.ParseQueryInt(r, "price_min", 0, 0, 1<<30); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		} else if min > 0 {
			input.PriceMin = &min
		}
		if max, err := validators.ParseQueryInt(r, "price_max", 0, 0, 1<<30); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		} else if max > 0 {
			input.PriceMax = &max
		}

		rows, err := svc.List(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": rows})
	}
}

// ProductDetail returns one product with variants and stock.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetDetail(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProductCreate registers a product.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Create(ctx, products.CreateInput{
			Name:        payload.Name,
			BrandID:     payload.BrandID,
			CategoryIDs: payload.CategoryIDs,
			Price:       payload.Price,
			Discount:    payload.Discount,
			SizeMin:     payload.SizeMin,
			SizeMax:     payload.SizeMax,
			Gender:      payload.Gender,
			Description: payload.Description,
			Status:      payload.Status,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// ProductUpdate applies the provided fields to a product.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Update(ctx, productID, products.UpdateInput{
			Name:        payload.Name,
			BrandID:     payload.BrandID,
			CategoryIDs: payload.CategoryIDs,
			Price:       payload.Price,
			Discount:    payload.Discount,
			Gender:      payload.Gender,
			Description: payload.Description,
			Status:      payload.Status,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProductDelete retires a product.
func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
