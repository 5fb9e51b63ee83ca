package controllers

import (
	"net/http"

	"github.com/stridewear/stridewear-backend/api/responses"
	"github.com/stridewear/stridewear-backend/internal/dashboard"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

// DashboardOverview returns the staff landing page snapshot.
func DashboardOverview(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		overview, err := svc.Overview(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
