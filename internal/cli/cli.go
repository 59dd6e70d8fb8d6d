// Package cli implements the stationmap command-line interface.
//
// Commands load a machine map from a file or URL, lay it out and write the
// result, edit nodes, browse the map interactively, build cycle scatter
// charts and serve the HTTP API. Settings come from the TOML config file
// (see [config.Load]); command flags override it.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces pipeline, cache and fetch events.
package cli

import (
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stationmap/pkg/buildinfo"
	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/config"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/observability"
	"github.com/matzehuels/stationmap/pkg/pipeline"
	"github.com/matzehuels/stationmap/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "stationmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the default
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stationmap lays out production machine maps",
		Long:         `Stationmap turns a production machine map (stations and the stations feeding them) into a layered layout, renders it, and charts per-cycle tool measurements.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/stationmap/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.scatterCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	hooks := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetFetchHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the loaded configuration.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	opts := c.cfg.CacheOptions()
	if c.noCache {
		opts.Backend = cache.BackendNone
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	keyer := c.cfg.Keyer()
	return pipeline.NewRunner(cc, keyer, c.Logger,
		source.WithCache(cc, keyer, c.cfg.Cache.SourceTTL.Duration),
		source.WithHTTPClient(&http.Client{Timeout: c.cfg.HTTP.Timeout.Duration}),
		source.WithRetry(c.cfg.HTTP.Retries, source.DefaultDelay),
	), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the engine overrides shared by layout, render, edit and
// browse. Zero values leave the configured setting in place.
type layoutFlags struct {
	strategy       string
	levelSpacing   float64
	siblingSpacing float64
	nodeWidth      float64
	nodeHeight     float64
	refresh        bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "depth strategy: recursive (default), kahn")
	cmd.Flags().Float64Var(&f.levelSpacing, "level-spacing", 0, "vertical distance between depths")
	cmd.Flags().Float64Var(&f.siblingSpacing, "sibling-spacing", 0, "horizontal distance between nodes of one depth")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "node box width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "node box height")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
}

// pipelineOptions merges the configured layout settings with f.
func (c *CLI) pipelineOptions(f layoutFlags) pipeline.Options {
	lo := c.cfg.LayoutOptions()
	opts := pipeline.Options{
		Strategy:       string(lo.Strategy),
		LevelSpacing:   lo.LevelSpacing,
		SiblingSpacing: lo.SiblingSpacing,
		NodeWidth:      lo.NodeWidth,
		NodeHeight:     lo.NodeHeight,
		Refresh:        f.refresh,
		Logger:         c.Logger,
	}
	if f.strategy != "" {
		opts.Strategy = f.strategy
	}
	if f.levelSpacing > 0 {
		opts.LevelSpacing = f.levelSpacing
	}
	if f.siblingSpacing > 0 {
		opts.SiblingSpacing = f.siblingSpacing
	}
	if f.nodeWidth > 0 {
		opts.NodeWidth = f.nodeWidth
	}
	if f.nodeHeight > 0 {
		opts.NodeHeight = f.nodeHeight
	}
	return opts
}

// outputBase strips the extension from input, or from the last path element
// of a URL input.
func outputBase(input string) string {
	if errors.IsURL(input) {
		name := strings.TrimSuffix(input, "/")
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		name = path.Base(name)
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
