package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stationmap/internal/server"
	"github.com/matzehuels/stationmap/pkg/observability"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, dataURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and cycle charts over HTTP",
		Long: `Serve layouts and cycle charts over HTTP.

Starts the JSON API used by the dashboard. Address, data root and cache
backend come from the [server] and [cache] config sections; --addr and
--data-url override them. With a redis cache backend several instances
share layouts and fetched documents.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.DefaultConfig()
			cfg.Addr = c.cfg.Server.Addr
			cfg.DataURL = c.cfg.Server.DataURL
			cfg.Source = c.cfg.Server.Source
			if addr != "" {
				cfg.Addr = addr
			}
			if dataURL != "" {
				cfg.DataURL = dataURL
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().StringVar(&dataURL, "data-url", "", "dashboard data root for the machine routes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The recorder replaces the verbose log hooks; /api/stats reports it.
	rec := observability.NewRecorder()
	observability.SetPipelineHooks(rec)
	observability.SetCacheHooks(rec)
	observability.SetFetchHooks(rec)
	defer observability.Reset()

	srv, err := server.New(runner, cfg, rec, c.Logger)
	if err != nil {
		return err
	}

	printInfo("Listening on %s", StyleHighlight.Render(cfg.Addr))
	if cfg.DataURL != "" {
		printDetail("Data root: %s", cfg.DataURL)
	}
	return srv.ListenAndServe(ctx)
}
