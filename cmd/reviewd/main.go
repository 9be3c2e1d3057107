// reviewd is the reView map service daemon: it loads the application
// configuration, parses every project config, and serves the figure, title,
// and project endpoints over HTTP until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wmcornejo/reView/internal/app"
	"github.com/wmcornejo/reView/internal/config"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "review.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: review.yaml, falling back to REVIEW_* environment variables)")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reviewd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reviewd: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reviewd: logger setup failed: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting reviewd",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("project_config_dir", cfg.Projects.ConfigDir),
		logging.String("cache_backend", cfg.Cache.Backend),
	)

	application, err := app.New(cfg, version, logger)
	if err != nil {
		logger.Error("startup failed", logging.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("reviewd stopped")
}

// loadConfig resolves the effective configuration: an explicit --config path
// must load; the default path is used when present; otherwise REVIEW_*
// environment variables and defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.LoadFromEnv()
}
