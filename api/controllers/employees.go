package controllers

import (
	"net/http"
	"strings"

	"github.com/stridewear/stridewear-backend/api/responses"
	"github.com/stridewear/stridewear-backend/api/validators"
	"github.com/stridewear/stridewear-backend/internal/employees"
	"github.com/stridewear/stridewear-backend/pkg/enums"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

type createEmployeePayload struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Role     string  `json:"role" validate:"required,oneof=staff shipper"`
}

type updateEmployeePayload struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone *string `json:"phone,omitempty"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=staff shipper"`
}

// EmployeeCreate provisions a staff or shipper account.
func EmployeeCreate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		var payload createEmployeePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		employee, err := svc.Create(ctx, employees.CreateInput{
			Name:     payload.Name,
			Email:    payload.Email,
			Phone:    payload.Phone,
			Password: payload.Password,
			Role:     enums.EmployeeRole(payload.Role),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

// EmployeeList returns employees, optionally narrowed by role.
func EmployeeList(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		var role *enums.EmployeeRole
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			parsed := enums.EmployeeRole(raw)
			role = &parsed
		}

		rows, err := svc.List(ctx, role)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"employees": rows})
	}
}

// EmployeeFetch returns one employee.
func EmployeeFetch(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		employeeID, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		employee, err := svc.Get(ctx, employeeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeeUpdate applies the provided fields to an employee account.
func EmployeeUpdate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		employeeID, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateEmployeePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := employees.UpdateInput{Name: payload.Name, Phone: payload.Phone}
		if payload.Role != nil {
			role := enums.EmployeeRole(*payload.Role)
			input.Role = &role
		}

		employee, err := svc.Update(ctx, employeeID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeeDelete removes an employee account.
func EmployeeDelete(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		staffID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		employeeID, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, staffID, employeeID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
