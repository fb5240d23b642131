// Package api provides the HTTP API for riverwatch.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/riverwatch/riverwatch/internal/api/handler"
	"github.com/riverwatch/riverwatch/internal/api/middleware"
	"github.com/riverwatch/riverwatch/internal/api/response"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/provider/resilience"
)

// DefaultRateLimitPerMinute applies when RouterConfig leaves the limit unset.
const DefaultRateLimitPerMinute = 100

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Monitor is the session constructed at startup. Required.
	Monitor *hydrology.Monitor

	// Registry reports upstream provider health on /v1/ops/status.
	Registry *resilience.Registry

	// RateLimitPerMinute caps station requests per client IP.
	RateLimitPerMinute int
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "riverwatch-api"
	}
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = DefaultRateLimitPerMinute
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no such resource")
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Monitor, cfg.Registry)
	stationsHandler := handler.NewStationsHandler(cfg.Monitor)
	metadataHandler := handler.NewMetadataHandler(cfg.Monitor)

	// Upstream-bound routes.
	upstreamRateLimit := middleware.RateLimitByIP(middleware.PerMinute(perMinute))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Get("/measures", metadataHandler.ListMeasureKinds)
			r.Get("/rivers", metadataHandler.ListRivers)
			r.Get("/towns", metadataHandler.ListTowns)
			r.Get("/labels", metadataHandler.ListLabels)
		})

		r.Route("/stations", func(r chi.Router) {
			r.Get("/", stationsHandler.ListStations)
			r.Route("/{notation}", func(r chi.Router) {
				r.Use(upstreamRateLimit)
				r.Get("/measures", stationsHandler.ListMeasures)
				r.Get("/readings/{kind}", stationsHandler.GetReadings)
			})
		})
	})

	return r
}
