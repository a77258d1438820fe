package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/overnite/manifest-backend/api/controllers"
	"github.com/overnite/manifest-backend/api/routes"
	"github.com/overnite/manifest-backend/internal/auth"
	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/exports"
	"github.com/overnite/manifest-backend/internal/manifests"
	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/auth/session"
	"github.com/overnite/manifest-backend/pkg/clock"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/env"
	"github.com/overnite/manifest-backend/pkg/instance"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/metrics"
	"github.com/overnite/manifest-backend/pkg/migrate"
	"github.com/overnite/manifest-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}
	clk := clock.System{Location: loc}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	manifestMetrics := metrics.NewManifestMetrics(registry)

	gdb := dbClient.DB()
	clientsRepo := clients.NewRepository(gdb)
	plansRepo := shippingplans.NewRepository(gdb)
	ratesRepo := shippingrates.NewRepository(gdb)
	manifestsRepo := manifests.NewRepository(gdb)

	clientsService, err := clients.NewService(clientsRepo, plansRepo, cfg.Password)
	if err != nil {
		return err
	}
	plansService, err := shippingplans.NewService(plansRepo)
	if err != nil {
		return err
	}
	ratesService, err := shippingrates.NewService(ratesRepo, plansRepo)
	if err != nil {
		return err
	}
	pricingService, err := pricing.NewService(ratesRepo, clientsRepo)
	if err != nil {
		return err
	}
	manifestsService, err := manifests.NewService(manifests.ServiceParams{
		Tx:      dbClient,
		Repo:    manifestsRepo,
		Rates:   ratesRepo,
		Clients: clientsRepo,
		Clock:   clk,
		Logger:  logg,
		Metrics: manifestMetrics,
	})
	if err != nil {
		return err
	}
	exportsService, err := exports.NewService(exports.ServiceParams{
		Manifests:  manifestsRepo,
		Rates:      ratesRepo,
		Letterhead: cfg.Invoice,
		Clock:      clk,
		Logger:     logg,
		Metrics:    manifestMetrics,
	})
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Clients:          clientsRepo,
		Registrar:        clientsService,
		Sessions:         sessionManager,
		JWTConfig:        cfg.JWT,
		PasswordConfig:   cfg.Password,
		OpenRegistration: cfg.FeatureFlags.OpenRegistration,
		Clock:            clk,
		Logger:           logg,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Sessions:    sessionManager,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Registry:    registry,
		HTTPMetrics: httpMetrics,
		Location:    loc,
		Pingers: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Auth:          authService,
		Clients:       clientsService,
		ShippingPlans: plansService,
		ShippingRates: ratesService,
		Pricing:       pricingService,
		Manifests:     manifestsService,
		Exports:       exportsService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
