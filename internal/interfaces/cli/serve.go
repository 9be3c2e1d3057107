package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wmcornejo/reView/internal/app"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the serve command, which runs the API server in the
// foreground until interrupted.  It is the same code path as the reviewd
// daemon, wired through the CLI's configuration loading.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reView API server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	cfg := cliCtx.Config
	if port > 0 {
		cfg.Server.Port = port
	}

	// The server logs per the application config, not the CLI's console
	// settings.
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return err
	}

	logger.Info("starting server",
		logging.String("version", Version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("project_config_dir", cfg.Projects.ConfigDir),
		logging.String("cache_backend", cfg.Cache.Backend),
	)

	application, err := app.New(cfg, Version, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
