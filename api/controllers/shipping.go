package controllers

import (
	"net/http"
	"strings"

	"github.com/stridewear/stridewear-backend/api/responses"
	"github.com/stridewear/stridewear-backend/api/validators"
	"github.com/stridewear/stridewear-backend/internal/shipping"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

// ShippingProvinces returns the carrier's province list.
func ShippingProvinces(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}
		rows, err := svc.ListProvinces(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"provinces": rows})
	}
}

// ShippingDistricts returns the districts of a province.
func ShippingDistricts(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}
		provinceID, err := validators.ParseQueryInt(r, "province_id", 0, 1, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if provinceID == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "province_id is required"))
			return
		}
		rows, err := svc.ListDistricts(ctx, provinceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"districts": rows})
	}
}

// ShippingWards returns the wards of a district.
func ShippingWards(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}
		districtID, err := validators.ParseQueryInt(r, "district_id", 0, 1, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if districtID == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "district_id is required"))
			return
		}
		rows, err := svc.ListWards(ctx, districtID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"wards": rows})
	}
}

// ShippingQuotes returns fee and lead-time quotes for every service that
// covers the destination district.
func ShippingQuotes(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		districtID, err := validators.ParseQueryInt(r, "district_id", 0, 1, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		wardCode := strings.TrimSpace(r.URL.Query().Get("ward_code"))
		if districtID == 0 || wardCode == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "district_id and ward_code are required"))
			return
		}

		rows, err := svc.QuoteAll(ctx, districtID, wardCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"quotes": rows})
	}
}
