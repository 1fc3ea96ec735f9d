package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gopayout/internal/adapter/http/handler"
	"github.com/iho/gopayout/internal/adapter/http/middleware"
	"github.com/iho/gopayout/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DisbursementHandler *handler.DisbursementHandler
	MonthlyFeeHandler   *handler.MonthlyFeeHandler
	StatsHandler        *handler.StatsHandler
	MerchantHandler     *handler.MerchantHandler
	HealthHandler       *handler.HealthHandler
	Logger              zerolog.Logger
	// Optional
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/disbursements", func(r chi.Router) {
			r.Post("/runs", cfg.DisbursementHandler.Run)
			r.Post("/backfill", cfg.DisbursementHandler.Backfill)
			r.Get("/{id}", cfg.DisbursementHandler.Get)
		})

		r.Post("/monthly-fees/runs", cfg.MonthlyFeeHandler.Run)
		r.Get("/merchants/{id}", cfg.MerchantHandler.Get)
		r.Get("/stats", cfg.StatsHandler.Yearly)
	})

	return r
}
