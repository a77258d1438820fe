package shippingrates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/pkg/db/dbtest"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *shippingplans.Repository) {
	t.Helper()
	conn := dbtest.Open(t)
	plans := shippingplans.NewRepository(conn)
	svc, err := NewService(NewRepository(conn), plans)
	require.NoError(t, err)
	return svc, plans
}

func klPenang(planID *uuid.UUID) RateInput {
	return RateInput{
		Origin:               " kl ",
		Destination:          "pen",
		ShippingPlanID:       planID,
		MinimumWeight:        decimal.NewFromInt(5),
		MinimumPrice:         decimal.NewFromInt(20),
		AdditionalPricePerKg: decimal.NewFromInt(3),
	}
}

func TestCreateRateNormalizesLane(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rate, err := svc.Create(ctx, klPenang(nil))
	require.NoError(t, err)
	require.Equal(t, "KL", rate.Origin)
	require.Equal(t, "PEN", rate.Destination)
	require.True(t, rate.MinimumPrice.Equal(decimal.NewFromInt(20)))

	got, err := svc.Get(ctx, rate.ID)
	require.NoError(t, err)
	require.True(t, got.AdditionalPricePerKg.Equal(decimal.NewFromInt(3)))
	require.Equal(t, "KL-PEN", LaneKey(" kl", "pen "))
}

func TestCreateRateRejectsDuplicateLanePerPlan(t *testing.T) {
	svc, plans := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, klPenang(nil))
	require.NoError(t, err)
	_, err = svc.Create(ctx, klPenang(nil))
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	gold := &models.ShippingPlan{Name: "Gold"}
	require.NoError(t, plans.Create(ctx, gold))
	_, err = svc.Create(ctx, klPenang(&gold.ID))
	require.NoError(t, err, "same lane on another plan is allowed")

	missing := uuid.New()
	_, err = svc.Create(ctx, klPenang(&missing))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateRateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), RateInput{
		MinimumWeight:        decimal.NewFromInt(-1),
		MinimumPrice:         decimal.Zero,
		AdditionalPricePerKg: decimal.NewFromInt(-2),
	})
	appErr := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	details := appErr.Details().(map[string]string)
	require.Equal(t, "is required", details["origin"])
	require.Equal(t, "is required", details["destination"])
	require.Contains(t, details, "minimum_weight")
	require.Contains(t, details, "additional_price_per_kg")
	require.NotContains(t, details, "minimum_price")
}

func TestUpdateAndDeleteRate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rate, err := svc.Create(ctx, klPenang(nil))
	require.NoError(t, err)
	other := klPenang(nil)
	other.Destination = "JHB"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	price := decimal.RequireFromString("25.50")
	updated, err := svc.Update(ctx, rate.ID, UpdateInput{MinimumPrice: &price})
	require.NoError(t, err)
	require.Equal(t, "25.5", updated.MinimumPrice.String())

	dest := "jhb"
	_, err = svc.Update(ctx, rate.ID, UpdateInput{Destination: &dest})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	require.NoError(t, svc.Delete(ctx, rate.ID))
	err = svc.Delete(ctx, rate.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Update(ctx, rate.ID, UpdateInput{MinimumPrice: &price})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListRatesAndDistinctLocations(t *testing.T) {
	svc, plans := newTestService(t)
	ctx := context.Background()

	gold := &models.ShippingPlan{Name: "Gold"}
	require.NoError(t, plans.Create(ctx, gold))

	for _, lane := range [][2]string{{"KL", "PEN"}, {"KL", "JHB"}, {"PEN", "KL"}} {
		input := klPenang(nil)
		input.Origin, input.Destination = lane[0], lane[1]
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, klPenang(&gold.ID))
	require.NoError(t, err)

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	fromKL, err := svc.List(ctx, ListFilter{Origin: "kl", DefaultOnly: true})
	require.NoError(t, err)
	require.Len(t, fromKL, 2)
	require.Equal(t, "JHB", fromKL[0].Destination)

	goldRates, err := svc.List(ctx, ListFilter{ShippingPlanID: &gold.ID})
	require.NoError(t, err)
	require.Len(t, goldRates, 1)

	origins, err := svc.Origins(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"KL", "PEN"}, origins)

	destinations, err := svc.Destinations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"JHB", "KL", "PEN"}, destinations)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)
}
