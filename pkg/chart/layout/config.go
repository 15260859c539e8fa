package layout

import (
	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/force"
	"github.com/matzehuels/safetymap/pkg/errors"
)

// Config holds the canvas size and the layout constants. All lengths are in
// pixels; the *X fields are fractions of Width.
type Config struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`

	CategoryHeight  float64 `toml:"category_height" json:"categoryHeight"`
	HeaderGap       float64 `toml:"header_gap" json:"headerGap"`
	RowSpacing      float64 `toml:"row_spacing" json:"rowSpacing"`
	GroupGap        float64 `toml:"group_gap" json:"groupGap"`
	ProviderSpacing float64 `toml:"provider_spacing" json:"providerSpacing"`
	MarginTop       float64 `toml:"margin_top" json:"marginTop"`
	MarginBottom    float64 `toml:"margin_bottom" json:"marginBottom"`

	// balanced
	LeftColumnX     float64 `toml:"left_column_x" json:"leftColumnX"`
	RightColumnX    float64 `toml:"right_column_x" json:"rightColumnX"`
	TechniqueOffset float64 `toml:"technique_offset" json:"techniqueOffset"`

	// sequential
	SequentialCategoryX  float64 `toml:"sequential_category_x" json:"sequentialCategoryX"`
	SequentialTechniqueX float64 `toml:"sequential_technique_x" json:"sequentialTechniqueX"`
	SequentialProviderX  float64 `toml:"sequential_provider_x" json:"sequentialProviderX"`

	// force
	MaxTicks int          `toml:"max_ticks" json:"maxTicks"`
	Force    force.Config `toml:"-" json:"-"`
}

// DefaultConfig returns the standard layout constants for a 1200x800 canvas.
func DefaultConfig() Config {
	return Config{
		Width:  1200,
		Height: 800,

		CategoryHeight:  chart.DefaultCategoryHeight,
		HeaderGap:       12,
		RowSpacing:      22,
		GroupGap:        24,
		ProviderSpacing: 36,
		MarginTop:       40,
		MarginBottom:    40,

		LeftColumnX:     0.22,
		RightColumnX:    0.78,
		TechniqueOffset: 36,

		SequentialCategoryX:  0.12,
		SequentialTechniqueX: 0.38,
		SequentialProviderX:  0.78,

		MaxTicks: 1000,
		Force:    force.DefaultConfig(),
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&c.Width, d.Width)
	fill(&c.Height, d.Height)
	fill(&c.CategoryHeight, d.CategoryHeight)
	fill(&c.HeaderGap, d.HeaderGap)
	fill(&c.RowSpacing, d.RowSpacing)
	fill(&c.GroupGap, d.GroupGap)
	fill(&c.ProviderSpacing, d.ProviderSpacing)
	fill(&c.MarginTop, d.MarginTop)
	fill(&c.MarginBottom, d.MarginBottom)
	fill(&c.LeftColumnX, d.LeftColumnX)
	fill(&c.RightColumnX, d.RightColumnX)
	fill(&c.TechniqueOffset, d.TechniqueOffset)
	fill(&c.SequentialCategoryX, d.SequentialCategoryX)
	fill(&c.SequentialTechniqueX, d.SequentialTechniqueX)
	fill(&c.SequentialProviderX, d.SequentialProviderX)
	if c.MaxTicks == 0 {
		c.MaxTicks = d.MaxTicks
	}
	if c.Force == (force.Config{}) {
		c.Force = d.Force
	}
	return c
}

// Validate rejects configurations no engine can draw sensibly.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Width < 0 || c.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.MarginTop+c.MarginBottom >= c.Height {
		return errors.New(errors.ErrCodeInvalidInput, "margins (%g+%g) leave no room on a canvas %g high",
			c.MarginTop, c.MarginBottom, c.Height)
	}
	for name, v := range map[string]float64{
		"left_column_x":          c.LeftColumnX,
		"right_column_x":         c.RightColumnX,
		"sequential_category_x":  c.SequentialCategoryX,
		"sequential_technique_x": c.SequentialTechniqueX,
		"sequential_provider_x":  c.SequentialProviderX,
	} {
		if v < 0 || v > 1 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a fraction of the width, got %g", name, v)
		}
	}
	if c.LeftColumnX >= c.RightColumnX {
		return errors.New(errors.ErrCodeInvalidInput, "left_column_x (%g) must be left of right_column_x (%g)",
			c.LeftColumnX, c.RightColumnX)
	}
	if c.RowSpacing < 0 || c.ProviderSpacing < 0 || c.GroupGap < 0 || c.HeaderGap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacings must not be negative")
	}
	return nil
}
