package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/layoutstore"
	"github.com/matzehuels/safetymap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store and logger - it
// doesn't keep pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  layoutstore.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and layout store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If store is nil, layouts are saved in the cache under the keyer's layout keys.
func NewRunner(c cache.Cache, keyer cache.Keyer, store layoutstore.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if store == nil {
		store = layoutstore.NewCacheStore(c, keyer)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, hash, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.DatasetHash = hash
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.CacheInfo.BuildHit = buildHit

	r.Logger.Info("built chart",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"providers", len(g.Providers),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	def, rl, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Default = def
	result.Layout = rl
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"layout", rl.LayoutName,
		"source", rl.Source,
		"applied", rl.Stats.Applied,
		"stale", rl.Stats.Stale,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, rl, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the chart with caching. It returns the graph, the
// dataset hash and whether the graph came from cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*chart.Graph, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, "", false, err
	}

	hooks := observability.Pipeline()
	source := opts.DatasetPath
	if opts.Dataset != nil {
		source = "inline"
	}
	hooks.OnBuildStart(ctx, source)
	start := time.Now()

	ds, err := LoadDataset(ctx, opts)
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, "", false, err
	}
	hash, err := DatasetHash(ds, opts)
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, "", false, err
	}
	cacheKey := r.Keyer.GraphKey(hash, opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if g, ok := r.cachedGraph(ctx, cacheKey); ok {
			hooks.OnBuildComplete(ctx, source, len(g.Nodes), time.Since(start), nil)
			return g, hash, true, nil
		}
	}

	g := Build(ds, opts)
	if data, err := json.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph); err != nil {
			r.Logger.Warn("cache graph", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	hooks.OnBuildComplete(ctx, source, len(g.Nodes), time.Since(start), nil)
	return g, hash, false, nil
}

func (r *Runner) cachedGraph(ctx context.Context, key string) (*chart.Graph, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil, false
	}
	var g chart.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		// corrupt entry: rebuild
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil, false
	}
	g.Reindex()
	observability.Cache().OnCacheHit(ctx, "graph")
	return &g, true
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards
// the hash and cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*chart.Graph, error) {
	g, _, _, err := r.BuildWithCacheInfo(ctx, opts)
	return g, err
}

// Layout computes the default layout for g and reconciles the saved layout
// into it. Store failures never fail the call; they only cost the saved
// arrangement.
func (r *Runner) Layout(ctx context.Context, g *chart.Graph, opts Options) (layout.Result, layout.Reconciled, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, layout.Reconciled{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Layout, len(g.Nodes))
	start := time.Now()

	def, err := layout.Compute(ctx, opts.Layout, g, opts.LayoutConfig())
	hooks.OnLayoutComplete(ctx, opts.Layout, time.Since(start), err)
	if err != nil {
		return layout.Result{}, layout.Reconciled{}, err
	}

	rl := layout.Reconcile(g, def, layoutstore.Loader(ctx, r.Store, opts.StoreKey, opts.Logger))
	hooks.OnReconcile(ctx, rl.Source, rl.Stats.Applied, rl.Stats.Stale, rl.Stats.NewNodes, rl.Stats.Invalid)
	if rl.Stats.Stale > 0 || rl.Stats.Invalid > 0 {
		opts.Logger.Debug("pruned saved layout", "stale", rl.Stats.Stale, "invalid", rl.Stats.Invalid)
	}
	return def, rl, nil
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *chart.Graph, rl layout.Reconciled, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Compute cache key from everything that ends up in the artifact
	layoutHash, err := cache.HashJSON([]any{Document{Graph: g, Layout: rl}, opts.Title, opts.PNGScale})
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, g, rl, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *chart.Graph, rl layout.Reconciled, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, rl, opts)
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
