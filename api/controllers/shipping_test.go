package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type stubPricing struct {
	got pricing.QuoteRequest
	err error
}

func (s *stubPricing) Quote(ctx context.Context, req pricing.QuoteRequest) (*pricing.Quote, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &pricing.Quote{
		Weight:     req.Weight,
		BasePrice:  decimal.RequireFromString("29"),
		Discount:   req.Discount,
		FinalPrice: decimal.RequireFromString("26.1"),
	}, nil
}

type stubRates struct {
	filter shippingrates.ListFilter
	update shippingrates.UpdateInput
}

func (s *stubRates) List(ctx context.Context, filter shippingrates.ListFilter) ([]shippingrates.RateDTO, error) {
	s.filter = filter
	return []shippingrates.RateDTO{}, nil
}

func (s *stubRates) Get(ctx context.Context, id uuid.UUID) (*shippingrates.RateDTO, error) {
	return &shippingrates.RateDTO{ID: id}, nil
}

func (s *stubRates) Create(ctx context.Context, input shippingrates.RateInput) (*shippingrates.RateDTO, error) {
	return &shippingrates.RateDTO{ID: uuid.New(), Origin: input.Origin, Destination: input.Destination}, nil
}

func (s *stubRates) Update(ctx context.Context, id uuid.UUID, input shippingrates.UpdateInput) (*shippingrates.RateDTO, error) {
	s.update = input
	return &shippingrates.RateDTO{ID: id}, nil
}

func (s *stubRates) Delete(ctx context.Context, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "shipping rate not found")
}

func (s *stubRates) Origins(ctx context.Context) ([]string, error) {
	return []string{"KL", "PEN"}, nil
}

func (s *stubRates) Destinations(ctx context.Context) ([]string, error) {
	return []string{"JB"}, nil
}

func TestCalculateShippingCombinesKgAndGram(t *testing.T) {
	svc := &stubPricing{}
	body := `{"origin":"kl","destination":"pen","kg":8.9,"gram":250,"discount":10}`
	rec := serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/api/calculate_shipping", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8.25", svc.got.Weight.String())
	assert.Equal(t, "10", svc.got.Discount.String())
	assert.Nil(t, svc.got.ConsignorID)

	var data map[string]string
	decodeData(t, rec, &data)
	assert.Equal(t, "26.10", data["total_price"])
	assert.Equal(t, "29.00", data["base_price"])
}

func TestCalculateShippingDecimalKg(t *testing.T) {
	svc := &stubPricing{}
	consignor := uuid.New()
	body := `{"origin":"KL","destination":"PEN","kg":"3.757","consignor_id":"` + consignor.String() + `"}`
	rec := serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/api/calculate-shipping", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.757", svc.got.Weight.String())
	assert.True(t, svc.got.Discount.IsZero())
	assert.Equal(t, consignor, *svc.got.ConsignorID)
}

func TestCalculateShippingRequiresWeight(t *testing.T) {
	svc := &stubPricing{}
	rec := serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/", `{"origin":"KL","destination":"PEN"}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Error.Details["kg"])
	assert.Empty(t, svc.got.Origin, "service should not be called")

	rec = serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/", `{"origin":"KL","destination":"PEN","gram":400}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.4", svc.got.Weight.String())
}

func TestCalculateShippingMissingRoute(t *testing.T) {
	svc := &stubPricing{err: pkgerrors.New(pkgerrors.CodeDomain, "shipping rate not found for this route")}
	rec := serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/", `{"origin":"KL","destination":"XX","kg":1}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shipping rate not found for this route", decodeError(t, rec).Error.Message)

	rec = serve(CalculateShipping(svc, nil), jsonRequest(http.MethodPost, "/", `{"origin":"KL","kg":1,"gram":1200}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeError(t, rec).Error.Details
	assert.Contains(t, details, "destination")
	assert.Contains(t, details, "gram")
}

func TestShippingRatesListFilters(t *testing.T) {
	svc := &stubRates{}
	plan := uuid.New()
	rec := serve(ShippingRatesList(svc, nil), jsonRequest(http.MethodGet, "/api/shipping_rates?origin=KL&shipping_plan_id="+plan.String()+"&default_only=true", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "KL", svc.filter.Origin)
	assert.Equal(t, plan, *svc.filter.ShippingPlanID)
	assert.True(t, svc.filter.DefaultOnly)

	rec = serve(ShippingRatesList(svc, nil), jsonRequest(http.MethodGet, "/api/shipping_rates?shipping_plan_id=x", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestShippingRateUpdateAndDelete(t *testing.T) {
	svc := &stubRates{}
	params := map[string]string{"id": uuid.NewString()}
	rec := serve(ShippingRateUpdate(svc, nil), withParams(jsonRequest(http.MethodPut, "/", `{"shipping_plan_id":null,"minimum_price":"25.50"}`), params))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.update.ClearShippingPlan)
	assert.Equal(t, "25.5", svc.update.MinimumPrice.String())
	assert.Nil(t, svc.update.MinimumWeight)

	rec = serve(ShippingRateDelete(svc, nil), withParams(jsonRequest(http.MethodDelete, "/", ""), params))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShippingRateLocations(t *testing.T) {
	rec := serve(ShippingRateOrigins(&stubRates{}, nil), jsonRequest(http.MethodGet, "/", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var origins []string
	decodeData(t, rec, &origins)
	assert.Equal(t, []string{"KL", "PEN"}, origins)

	rec = serve(ShippingRateDestinations(&stubRates{}, nil), jsonRequest(http.MethodGet, "/", ""))
	require.Equal(t, http.StatusOK, rec.Code)
}
