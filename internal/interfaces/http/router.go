// Package http wires the map service's HTTP surface: the chi route tree,
// the middleware chain, and the net/http server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/prometheus"
	"github.com/wmcornejo/reView/internal/interfaces/http/handlers"
	"github.com/wmcornejo/reView/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	ProjectHandler *handlers.ProjectHandler
	MapHandler     *handlers.MapHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	CORSMiddleware    *middleware.CORSMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware

	// MaxBodySize caps request bodies in bytes; 0 means unlimited.
	MaxBodySize int64

	// MetricsCollector, when set, exposes GET /metrics.
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  It wires global middleware, public health endpoints, and
// the API v1 resource groups into a single http.Handler suitable for use
// with http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(cfg.MaxBodySize))
	}

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Handler)
	}

	// --- Public health endpoints ---
	r.Group(func(pub chi.Router) {
		if cfg.HealthHandler != nil {
			pub.Get("/healthz", cfg.HealthHandler.Liveness)
			pub.Get("/readyz", cfg.HealthHandler.Readiness)
			pub.Get("/healthz/detail", cfg.HealthHandler.Detailed)
		}
	})

	// --- Metrics endpoint ---
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerProjectRoutes(api, cfg.ProjectHandler)
		registerMapRoutes(api, cfg.MapHandler)
	})

	return r
}

// registerProjectRoutes mounts project discovery endpoints under /projects.
func registerProjectRoutes(r chi.Router, h *handlers.ProjectHandler) {
	if h == nil {
		return
	}
	r.Route("/projects", func(pr chi.Router) {
		pr.Get("/", h.List)
		pr.Get("/{projectName}", h.Get)
	})
}

// registerMapRoutes mounts the figure and title build endpoints.
func registerMapRoutes(r chi.Router, h *handlers.MapHandler) {
	if h == nil {
		return
	}
	r.Post("/map", h.BuildMap)
	r.Post("/title", h.BuildTitle)
}
