package seed

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db/dbtest"
	"github.com/overnite/manifest-backend/pkg/logger"
)

func newParams(t *testing.T) Params {
	t.Helper()
	conn := dbtest.Open(t)
	plansRepo := shippingplans.NewRepository(conn)

	clientsSvc, err := clients.NewService(clients.NewRepository(conn), plansRepo, config.PasswordConfig{})
	require.NoError(t, err)
	plansSvc, err := shippingplans.NewService(plansRepo)
	require.NoError(t, err)
	ratesSvc, err := shippingrates.NewService(shippingrates.NewRepository(conn), plansRepo)
	require.NoError(t, err)

	return Params{
		Clients: clientsSvc,
		Plans:   plansSvc,
		Rates:   ratesSvc,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestRunIsRepeatable(t *testing.T) {
	p := newParams(t)
	ctx := context.Background()
	opts := Options{AdminEmail: "root@example.com"}

	first, err := Run(ctx, p, opts)
	require.NoError(t, err)
	require.True(t, first.AdminCreated)
	require.NotEmpty(t, first.TemporaryPassword)
	require.Equal(t, len(DefaultLanes), first.RatesCreated)

	second, err := Run(ctx, p, opts)
	require.NoError(t, err)
	require.False(t, second.AdminCreated)
	require.Equal(t, first.PlanID, second.PlanID)
	require.Zero(t, second.RatesCreated)
	require.Equal(t, len(DefaultLanes), second.RatesSkipped)

	planRates, err := p.Rates.List(ctx, shippingrates.ListFilter{ShippingPlanID: &first.PlanID})
	require.NoError(t, err)
	require.Len(t, planRates, 2)
}

func TestRunCollectsLaneErrors(t *testing.T) {
	p := newParams(t)
	opts := Options{
		AdminEmail:    "root@example.com",
		AdminPassword: "a-long-password",
		Lanes: []Lane{
			{Origin: "KL", Destination: "PEN", MinimumWeight: "5", MinimumPrice: "25", AdditionalPricePerKg: "3"},
			{Origin: "KL", Destination: "JB", MinimumWeight: "x", MinimumPrice: "25", AdditionalPricePerKg: "3"},
			{Origin: "KL", Destination: "BKI", MinimumWeight: "5", MinimumPrice: "25", AdditionalPricePerKg: "nope"},
		},
	}

	report, err := Run(context.Background(), p, opts)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.Equal(t, 1, report.RatesCreated)
	require.Empty(t, report.TemporaryPassword)
}

func TestRunRequiresEmail(t *testing.T) {
	_, err := Run(context.Background(), newParams(t), Options{})
	require.Error(t, err)
}
