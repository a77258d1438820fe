package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/overnite/manifest-backend/api/controllers"
	"github.com/overnite/manifest-backend/api/middleware"
	"github.com/overnite/manifest-backend/internal/auth"
	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/exports"
	"github.com/overnite/manifest-backend/internal/manifests"
	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/auth/session"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/metrics"
	pkgredis "github.com/overnite/manifest-backend/pkg/redis"
)

// Dependencies is everything the HTTP surface needs. Idempotency and
// RateLimiter may be nil, which disables those middlewares.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	RateLimiter middleware.RateLimiterStore
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Location    *time.Location
	Pingers     map[string]controllers.Pinger

	Auth          auth.Service
	Clients       clients.Service
	ShippingPlans shippingplans.Service
	ShippingRates shippingrates.Service
	Pricing       pricing.Service
	Manifests     manifests.Service
	Exports       exports.Service
}

func NewRouter(d Dependencies) http.Handler {
	cfg := d.Config
	logg := d.Logger
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	idempotency := middleware.Idempotency(d.Idempotency, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Pingers, logg))
	})
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), d.RateLimiter, logg)).
			Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), d.RateLimiter, logg), idempotency).
			Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, cfg.JWT, logg))
		r.Post("/calculate_shipping", controllers.CalculateShipping(d.Pricing, logg))
		r.Post("/calculate-shipping", controllers.CalculateShipping(d.Pricing, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(idempotency)

			r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
			r.Get("/user", controllers.AuthMe(d.Auth, logg))
			r.Get("/shipping_rates", controllers.ShippingRatesList(d.ShippingRates, logg))
			r.Get("/shipping-rates/origins", controllers.ShippingRateOrigins(d.ShippingRates, logg))
			r.Get("/shipping-rates/destinations", controllers.ShippingRateDestinations(d.ShippingRates, logg))
			r.Get("/clients/{id}/statement", controllers.ClientStatement(d.Manifests, loc, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))

				r.Post("/shipping_rates", controllers.ShippingRateCreate(d.ShippingRates, logg))
				r.Put("/shipping_rates/{id}", controllers.ShippingRateUpdate(d.ShippingRates, logg))
				r.Delete("/shipping_rates/{id}", controllers.ShippingRateDelete(d.ShippingRates, logg))

				r.Get("/shipping-plans", controllers.ShippingPlansList(d.ShippingPlans, logg))
				r.Post("/shipping-plans", controllers.ShippingPlanCreate(d.ShippingPlans, logg))

				r.Route("/clients", func(r chi.Router) {
					r.Get("/", controllers.ClientsList(d.Clients, logg))
					r.Post("/", controllers.ClientsCreate(d.Clients, logg))
					r.Get("/{id}", controllers.ClientsGet(d.Clients, logg))
					r.Put("/{id}", controllers.ClientsUpdate(d.Clients, logg))
					r.Get("/{id}/cn-numbers", controllers.ClientCnNumbers(d.Manifests, logg))
				})

				r.Route("/manifests", func(r chi.Router) {
					r.Get("/", controllers.ManifestsList(d.Manifests, logg))
					r.Post("/", controllers.ManifestsCreate(d.Manifests, logg))
					r.Get("/form-data", controllers.ManifestsFormData(d.Manifests, logg))
					r.Post("/estimate", controllers.ManifestsEstimate(d.Manifests, logg))
					r.Get("/{id}", controllers.ManifestsGet(d.Manifests, logg))
					r.Put("/{id}", controllers.ManifestsUpdate(d.Manifests, logg))
					r.Delete("/{id}", controllers.ManifestsDelete(d.Manifests, logg))
					r.Post("/{id}/lists", controllers.ManifestsAppendLines(d.Manifests, logg))
					r.Put("/{id}/lists/{lineId}", controllers.ManifestsUpdateLine(d.Manifests, logg))
					r.Post("/{id}/confirm", controllers.ManifestsConfirm(d.Manifests, logg))
				})

				r.Route("/manifest", func(r chi.Router) {
					r.Post("/pdf", controllers.ExportManifests(d.Exports, exports.FormatPDF, logg))
					r.Get("/pdf/{id}", controllers.ExportManifest(d.Exports, exports.FormatPDF, logg))
					r.Post("/excel", controllers.ExportManifests(d.Exports, exports.FormatExcel, logg))
					r.Get("/excel/{id}", controllers.ExportManifest(d.Exports, exports.FormatExcel, logg))
				})
			})
		})
	})

	return r
}
