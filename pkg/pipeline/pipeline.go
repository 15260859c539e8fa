// Package pipeline provides the chart pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: load a dataset and build the unified chart graph
//  2. Layout: compute the default layout and reconcile the saved one into it
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run on its own or as part of [Runner.Execute]. Built
// graphs and rendered artifacts are cached by content hash; the saved layout
// lives in a [layoutstore.Store].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DatasetPath: "safety.json",
//	    Formats:     []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Build(ctx, opts)
//	def, rl, err := runner.Layout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, g, rl, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/dataset"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/layoutstore"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultLayout is the default layout engine.
	DefaultLayout = layout.NameBalanced

	// DefaultRenderer is the default SVG renderer.
	DefaultRenderer = RendererDirect

	// DefaultStoreKey is the name the layout is saved under.
	DefaultStoreKey = layoutstore.DefaultName

	// DefaultPNGScale is the default PNG resolution multiplier.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Renderers.
const (
	// RendererDirect draws at the reconciled positions with svgo.
	RendererDirect = "direct"
	// RendererGraphviz pins the reconciled positions and renders with neato.
	RendererGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	RendererDirect:   true,
	RendererGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	DatasetPath    string            `json:"dataset_path,omitempty"` // file or http(s) URL
	Providers      []string          `json:"providers,omitempty"`    // nil = all providers
	ProviderColors map[string]string `json:"provider_colors,omitempty"`
	CategoryColors map[string]string `json:"category_colors,omitempty"`
	Refresh        bool              `json:"refresh,omitempty"`

	// Layout options
	Layout   string        `json:"layout,omitempty"`
	Width    float64       `json:"width,omitempty"`
	Height   float64       `json:"height,omitempty"`
	StoreKey string        `json:"store_key,omitempty"`
	Config   layout.Config `json:"-"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Renderer string   `json:"renderer,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`
	Title    string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Dataset *dataset.Dataset `json:"-"` // used instead of DatasetPath when set
	Logger  *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built chart.
	Graph *chart.Graph

	// DatasetHash is the content hash the graph was cached under.
	DatasetHash string

	// Default is the engine layout before reconciliation.
	Default layout.Result

	// Layout is the reconciled layout that was rendered.
	Layout layout.Reconciled

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// Document is the JSON artifact: the chart together with the layout it was
// drawn with. The HTTP API serves the same shape.
type Document struct {
	Graph  *chart.Graph      `json:"graph"`
	Layout layout.Reconciled `json:"layout"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRenderer checks that a renderer is valid.
func ValidateRenderer(renderer string) error {
	if !ValidRenderers[renderer] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid renderer: %q (must be one of: direct, graphviz)", renderer)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for building the graph.
func (o *Options) ValidateForBuild() error {
	if o.Dataset == nil {
		if o.DatasetPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "dataset path is required")
		}
		if err := errors.ValidatePath(o.DatasetPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.StoreKey == "" {
		o.StoreKey = DefaultStoreKey
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateLayoutName(o.Layout); err != nil {
		return err
	}
	if err := errors.ValidateStoreKey(o.StoreKey); err != nil {
		return err
	}
	return o.LayoutConfig().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateRenderer(o.Renderer)
}

// LayoutConfig returns the layout constants with the canvas size applied.
func (o *Options) LayoutConfig() layout.Config {
	cfg := o.Config
	cfg.Width = o.Width
	cfg.Height = o.Height
	return cfg
}

// BuildOptions returns the chart builder options.
func (o *Options) BuildOptions() []chart.Option {
	var opts []chart.Option
	if o.Providers != nil {
		opts = append(opts, chart.WithProviders(o.Providers))
	}
	return opts
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	var providers []string
	if o.Providers != nil {
		providers = slices.Sorted(slices.Values(o.Providers))
		if providers == nil {
			providers = []string{}
		}
	}
	return cache.GraphKeyOpts{Providers: providers}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Renderer: o.Renderer,
		Width:    o.Width,
		Height:   o.Height,
	}
}
