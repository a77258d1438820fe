package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/api/responses"
	"github.com/overnite/manifest-backend/api/validators"
	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/types"
)

var gramsPerKg = decimal.NewFromInt(1000)

// calculateShippingRequest accepts either a decimal kg or whole kg plus
// gram. At least one of the two must be present.
type calculateShippingRequest struct {
	Origin      string           `json:"origin" validate:"required"`
	Destination string           `json:"destination" validate:"required"`
	ConsignorID *uuid.UUID       `json:"consignor_id"`
	Kg          *decimal.Decimal `json:"kg" validate:"required_without=Gram"`
	Gram        *int             `json:"gram" validate:"omitempty,gte=0,lte=999"`
	Discount    *decimal.Decimal `json:"discount"`
}

func (r calculateShippingRequest) weight() decimal.Decimal {
	kg := decimal.Zero
	if r.Kg != nil {
		kg = *r.Kg
	}
	if r.Gram == nil {
		return kg
	}
	return kg.Floor().Add(decimal.NewFromInt(int64(*r.Gram)).Div(gramsPerKg))
}

// CalculateShipping prices a lane for an optional consignor.
func CalculateShipping(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var body calculateShippingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := pricing.QuoteRequest{
			Origin:      body.Origin,
			Destination: body.Destination,
			ConsignorID: body.ConsignorID,
			Weight:      body.weight(),
		}
		if body.Discount != nil {
			req.Discount = *body.Discount
		}

		quote, err := svc.Quote(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type shippingRateRequest struct {
	Origin               string          `json:"origin" validate:"required,max=100"`
	Destination          string          `json:"destination" validate:"required,max=100"`
	ShippingPlanID       *uuid.UUID      `json:"shipping_plan_id"`
	MinimumWeight        decimal.Decimal `json:"minimum_weight"`
	MinimumPrice         decimal.Decimal `json:"minimum_price"`
	AdditionalPricePerKg decimal.Decimal `json:"additional_price_per_kg"`
}

type shippingRateUpdateRequest struct {
	Origin               *string            `json:"origin" validate:"omitempty,max=100"`
	Destination          *string            `json:"destination" validate:"omitempty,max=100"`
	ShippingPlanID       types.NullableUUID `json:"shipping_plan_id"`
	MinimumWeight        *decimal.Decimal   `json:"minimum_weight"`
	MinimumPrice         *decimal.Decimal   `json:"minimum_price"`
	AdditionalPricePerKg *decimal.Decimal   `json:"additional_price_per_kg"`
}

// ShippingRatesList returns the rate table, optionally filtered by lane or plan.
func ShippingRatesList(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}

		planID, err := validators.ParseQueryUUID(r, "shipping_plan_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defaultOnly, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("default_only")))

		rates, err := svc.List(r.Context(), shippingrates.ListFilter{
			Origin:         validators.SanitizeString(r.URL.Query().Get("origin"), 100),
			Destination:    validators.SanitizeString(r.URL.Query().Get("destination"), 100),
			ShippingPlanID: planID,
			DefaultOnly:    defaultOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rates)
	}
}

func ShippingRateOrigins(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}
		origins, err := svc.Origins(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, origins)
	}
}

func ShippingRateDestinations(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}
		destinations, err := svc.Destinations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, destinations)
	}
}

func ShippingRateCreate(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}

		var body shippingRateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := svc.Create(r.Context(), shippingrates.RateInput{
			Origin:               body.Origin,
			Destination:          body.Destination,
			ShippingPlanID:       body.ShippingPlanID,
			MinimumWeight:        body.MinimumWeight,
			MinimumPrice:         body.MinimumPrice,
			AdditionalPricePerKg: body.AdditionalPricePerKg,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rate)
	}
}

func ShippingRateUpdate(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shippingRateUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := svc.Update(r.Context(), id, shippingrates.UpdateInput{
			Origin:               body.Origin,
			Destination:          body.Destination,
			ShippingPlanID:       body.ShippingPlanID.Value,
			ClearShippingPlan:    body.ShippingPlanID.Cleared(),
			MinimumWeight:        body.MinimumWeight,
			MinimumPrice:         body.MinimumPrice,
			AdditionalPricePerKg: body.AdditionalPricePerKg,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

func ShippingRateDelete(svc shippingrates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping rates service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
