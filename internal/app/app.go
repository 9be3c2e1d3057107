// Package app assembles the reView map service from its parts — logging,
// metrics, cache, the project registry, the tabular readers, the map/title
// service, and the HTTP server — and runs it until the context is canceled.
// Both the reviewd daemon and `review serve` boot through this package so
// the two entry points cannot drift apart.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/wmcornejo/reView/internal/application/mapview"
	"github.com/wmcornejo/reView/internal/config"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/infrastructure/cache"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/prometheus"
	"github.com/wmcornejo/reView/internal/infrastructure/tabular"
	httpserver "github.com/wmcornejo/reView/internal/interfaces/http"
	"github.com/wmcornejo/reView/internal/interfaces/http/handlers"
	"github.com/wmcornejo/reView/internal/interfaces/http/middleware"
)

// App is one fully-wired service instance.
type App struct {
	cfg       *config.Config
	logger    logging.Logger
	registry  *project.Registry
	service   mapview.Service
	server    *httpserver.Server
	store     cache.Cache
	storeStop io.Closer
	metrics   *prometheus.AppMetrics
	collector prometheus.MetricsCollector
}

// New wires a service instance from a validated configuration.  version is
// reported by the health endpoints.  On return the project registry has been
// loaded; nothing is listening until Run.
func New(cfg *config.Config, version string, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	a := &App{cfg: cfg, logger: log}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("app: metrics setup failed: %w", err)
		}
		a.collector = collector
		a.metrics = prometheus.NewAppMetrics(collector)
	}

	if err := a.buildCache(); err != nil {
		return nil, err
	}

	// The registry's safe reader shares the service cache so demand and
	// variable-options tables (and their negative results) survive per the
	// configured backend.
	safeReader := tabular.NewSafeReader(a.store, log)

	registry, err := project.NewRegistry(
		cfg.Projects.ConfigDir,
		cfg.Projects.DataDir,
		safeReader,
		log,
		project.WithReloadHook(func(trigger string, loaded int) {
			prometheus.RecordProjectReload(a.metrics, trigger, loaded)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("app: project registry setup failed: %w", err)
	}
	a.registry = registry

	a.service = mapview.NewService(registry, tabular.Reader{}, a.store, log, a.metrics)

	router := a.buildRouter(version)
	a.server = httpserver.NewServer(cfg.Server, router, log)
	return a, nil
}

func (a *App) buildCache() error {
	opts := []cache.Option{
		cache.WithPrefix(a.cfg.Cache.KeyPrefix),
		cache.WithDefaultTTL(a.cfg.Cache.DefaultTTL),
	}
	switch a.cfg.Cache.Backend {
	case "redis":
		client := cache.NewRedisClient(a.cfg.Cache.Redis)
		store := cache.NewRedis(client, a.logger, opts...)
		a.store = store
		a.storeStop = store
	default:
		a.store = cache.NewMemory(a.cfg.Cache.MaxEntries, opts...)
	}
	return nil
}

func (a *App) buildRouter(version string) http.Handler {
	healthHandler := handlers.NewHealthHandler(version, a.metrics,
		handlers.NewChecker("cache", a.store.Ping),
		handlers.NewChecker("projects", func(ctx context.Context) error {
			if a.registry.Len() == 0 {
				return fmt.Errorf("no project configs loaded from %s", a.registry.ConfigDir())
			}
			return nil
		}),
	)

	routerCfg := httpserver.RouterConfig{
		ProjectHandler:    handlers.NewProjectHandler(a.registry, a.logger),
		MapHandler:        handlers.NewMapHandler(a.service, a.logger),
		HealthHandler:     healthHandler,
		LoggingMiddleware: middleware.NewLoggingMiddleware(a.logger, middleware.DefaultLoggingConfig()),
		MaxBodySize:       a.cfg.Server.MaxBodySize,
	}
	if len(a.cfg.Server.CORSOrigins) > 0 {
		routerCfg.CORSMiddleware = middleware.NewCORSMiddlewareForOrigins(a.cfg.Server.CORSOrigins)
	}
	if a.metrics != nil {
		routerCfg.MetricsMiddleware = middleware.NewMetricsMiddleware(a.metrics)
		routerCfg.MetricsCollector = a.collector
	}
	return httpserver.NewRouter(routerCfg)
}

// Run serves until ctx is canceled or the listener fails, then shuts down
// gracefully.  When the projects watch flag is set, config directory changes
// reload the registry for the lifetime of ctx.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Projects.Watch {
		if err := a.registry.Watch(ctx); err != nil {
			return fmt.Errorf("app: project watch setup failed: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	// The run context is already canceled; shut down on a fresh one so the
	// drain window is honored.
	err := a.server.Stop(context.Background())
	<-errCh
	a.close()
	return err
}

func (a *App) close() {
	if a.storeStop != nil {
		if err := a.storeStop.Close(); err != nil {
			a.logger.Warn("cache shutdown failed", logging.Err(err))
		}
	}
}

// Registry exposes the loaded project registry, primarily for tests and the
// CLI validate path.
func (a *App) Registry() *project.Registry { return a.registry }

// Service exposes the map/title application service.
func (a *App) Service() mapview.Service { return a.service }

// Handler exposes the HTTP route tree for httptest-driven tests.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Addr returns the address the HTTP server binds to.
func (a *App) Addr() string { return a.server.Addr() }
