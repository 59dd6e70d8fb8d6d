package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/observability"
	"github.com/matzehuels/stationmap/pkg/source"
	"github.com/matzehuels/stationmap/pkg/station"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, loader and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader *source.Loader
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Loader options are applied after the runner's cache and logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, loaderOpts ...source.Option) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	opts := append([]source.Option{
		source.WithCache(c, keyer, cache.SourceTTL),
		source.WithLogger(logger),
	}, loaderOpts...)
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Loader: source.New(opts...),
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	ds, sourceHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = ds
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.SourceHit = sourceHit

	opts.Logger.Info("loaded dataset",
		"source", opts.describe(),
		"nodes", len(ds.Nodes),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, hash, layoutHit, err := r.layout(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.DatasetHash = hash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = res.Stats.Nodes
	result.Stats.EdgeCount = res.Stats.Edges
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"max_depth", res.Stats.MaxDepth,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)
	if res.Stats.CycleEdges > 0 {
		opts.Logger.Warn("dataset contains cycles", "cycle_edges", res.Stats.CycleEdges)
	}
	if res.Stats.MissingRefs > 0 {
		opts.Logger.Warn("dropped unknown input stations", "count", res.Stats.MissingRefs)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo returns the inline dataset, or loads opts.Source, and
// reports whether a remote source came from cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (station.Dataset, bool, error) {
	if opts.Dataset != nil {
		return *opts.Dataset, false, nil
	}
	ds, doc, err := r.Loader.Dataset(ctx, opts.Source)
	if err != nil {
		return station.Dataset{}, false, err
	}
	return ds, doc.Cached, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the
// cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (station.Dataset, error) {
	ds, _, err := r.LoadWithCacheInfo(ctx, opts)
	return ds, err
}

// LayoutWithCacheInfo computes the layout of ds with caching and returns
// cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, ds station.Dataset, opts Options) (layout.Result, bool, error) {
	res, _, hit, err := r.layout(ctx, ds, opts)
	return res, hit, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Layout(ctx context.Context, ds station.Dataset, opts Options) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, ds, opts)
	return res, err
}

func (r *Runner) layout(ctx context.Context, ds station.Dataset, opts Options) (res layout.Result, hash string, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, "", false, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Strategy, len(ds.Nodes))
	defer func() {
		observability.Pipeline().OnLayoutComplete(ctx, opts.Strategy, time.Since(start), err)
	}()

	hash, err = DatasetHash(ds)
	if err != nil {
		return layout.Result{}, "", false, err
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, hash, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res = GenerateLayout(ds, opts)

	if data, err := graph.MarshalLayout(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			opts.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return res, hash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. The hit is reported only when every requested format was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	layoutHash, err := LayoutHash(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, ok, err := r.Cache.Get(ctx, key)
			if err != nil || !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
