package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/seed"
	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/env"
	"github.com/overnite/manifest-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	var opts seed.Options
	flag.StringVar(&opts.AdminEmail, "admin-email", env.Get("MANIFEST_SEED_ADMIN_EMAIL", ""), "superadmin email")
	flag.StringVar(&opts.AdminPassword, "admin-password", env.Get("MANIFEST_SEED_ADMIN_PASSWORD", ""), "superadmin password; generated when empty")
	flag.StringVar(&opts.CompanyName, "company", "Operations", "superadmin company name")
	flag.StringVar(&opts.PlanName, "plan", "Corporate", "shipping plan to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	report, err := run(ctx, cfg, logg, opts)
	if report != nil && report.TemporaryPassword != "" {
		fmt.Printf("superadmin %s temporary password: %s\n", opts.AdminEmail, report.TemporaryPassword)
	}
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts seed.Options) (report *seed.Report, err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	gdb := dbClient.DB()
	plansRepo := shippingplans.NewRepository(gdb)

	clientsSvc, err := clients.NewService(clients.NewRepository(gdb), plansRepo, cfg.Password)
	if err != nil {
		return nil, err
	}
	plansSvc, err := shippingplans.NewService(plansRepo)
	if err != nil {
		return nil, err
	}
	ratesSvc, err := shippingrates.NewService(shippingrates.NewRepository(gdb), plansRepo)
	if err != nil {
		return nil, err
	}

	return seed.Run(ctx, seed.Params{
		Clients: clientsSvc,
		Plans:   plansSvc,
		Rates:   ratesSvc,
		Logger:  logg,
	}, opts)
}
