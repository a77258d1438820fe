package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/api/middleware"
	"github.com/overnite/manifest-backend/api/responses"
	"github.com/overnite/manifest-backend/api/validators"
	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/manifests"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/pagination"
	"github.com/overnite/manifest-backend/pkg/types"
)

type clientCreateRequest struct {
	CompanyName    string           `json:"company_name" validate:"required,max=255"`
	Email          string           `json:"email" validate:"required,email"`
	Password       string           `json:"password" validate:"omitempty,min=8,max=72"`
	Role           enums.ClientRole `json:"role"`
	ShippingPlanID *uuid.UUID       `json:"shipping_plan_id"`
}

type clientUpdateRequest struct {
	CompanyName    *string            `json:"company_name" validate:"omitempty,max=255"`
	Email          *string            `json:"email" validate:"omitempty,email"`
	Password       *string            `json:"password" validate:"omitempty,min=8,max=72"`
	Role           *enums.ClientRole  `json:"role"`
	ShippingPlanID types.NullableUUID `json:"shipping_plan_id"`
	IsActive       *bool              `json:"is_active"`
}

func ClientsList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clients service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := clients.ListParams{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 255),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role, err := enums.ParseClientRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
					WithDetails(map[string]string{"role": "is invalid"}))
				return
			}
			params.Role = &role
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ClientsCreate registers a client. The generated password, when one was not
// supplied, is only ever returned here.
func ClientsCreate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clients service unavailable"))
			return
		}

		var body clientCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), middleware.RoleFromContext(r.Context()), clients.CreateInput{
			CompanyName:    body.CompanyName,
			Email:          body.Email,
			Password:       body.Password,
			Role:           body.Role,
			ShippingPlanID: body.ShippingPlanID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ClientsGet(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clients service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func ClientsUpdate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clients service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body clientUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Update(r.Context(), middleware.RoleFromContext(r.Context()), id, clients.UpdateInput{
			CompanyName:       body.CompanyName,
			Email:             body.Email,
			Password:          body.Password,
			Role:              body.Role,
			ShippingPlanID:    body.ShippingPlanID.Value,
			ClearShippingPlan: body.ShippingPlanID.Cleared(),
			IsActive:          body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

// ClientCnNumbers lists the consignment notes shipped for a consignor.
func ClientCnNumbers(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		numbers, err := svc.CnNumbers(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, numbers)
	}
}

// ClientStatement lists a consignor's lines between optional inclusive
// dates. Consignors may only read their own statement.
func ClientStatement(svc manifests.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !middleware.RoleFromContext(r.Context()).IsStaff() && middleware.ClientIDFromContext(r.Context()) != id {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "statement belongs to another client"))
			return
		}

		start, err := validators.ParseQueryDate(r, "start_date", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if start != nil && end != nil && end.Before(*start) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Field("end_date", "must be on or after start_date"))
			return
		}

		statement, err := svc.Statement(r.Context(), manifests.StatementParams{
			ConsignorID: id,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}
