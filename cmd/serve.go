package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taigaflow/taigaflow/internal/web"
)

// serveCmd runs the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve flow datasets over an HTTP API",
	Long: `Start an HTTP server that exposes dataset generation as JSON endpoints.

Endpoints:
  GET /healthz                  - liveness probe
  GET /api/v1/statuses          - workflow states for a project
  GET /api/v1/cfd               - cumulative flow dataset
  GET /api/v1/summary           - headline flow numbers

Query parameters: project, start, end, granularity. Omitted parameters fall
back to the server's configured defaults.

The server shares the event cache and run tracking configuration with the CLI,
so repeated requests for the same window are served from cache.

Examples:
  # Serve on the default port
  taigaflow serve

  # Bind to a specific address with a default project
  taigaflow serve --addr :9090 my-project`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := web.NewServer(cfg, cacheManager, logger)
		return server.Start(ctx, cfg.ServeAddr)
	},
}
