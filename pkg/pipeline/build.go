package pipeline

import (
	"context"
	"maps"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/dataset"
)

// LoadDataset returns opts.Dataset when set and otherwise reads
// opts.DatasetPath, a file or an http(s) URL (JSON, YAML or TOML by
// extension).
func LoadDataset(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	if opts.Dataset != nil {
		return opts.Dataset, nil
	}
	return dataset.Open(ctx, opts.DatasetPath)
}

// DatasetHash hashes the dataset together with the palette overrides in
// opts, which change node colours without changing the dataset.
func DatasetHash(ds *dataset.Dataset, opts Options) (string, error) {
	return cache.HashJSON(struct {
		Dataset        *dataset.Dataset  `json:"dataset"`
		ProviderColors map[string]string `json:"provider_colors,omitempty"`
		CategoryColors map[string]string `json:"category_colors,omitempty"`
	}{ds, opts.ProviderColors, opts.CategoryColors})
}

// Build builds the chart for ds. Provider colours from opts override the
// dataset's palette; category colours from opts fill in for categories
// without their own colour.
func Build(ds *dataset.Dataset, opts Options) *chart.Graph {
	in := chart.InputFromDataset(ds)
	if len(opts.ProviderColors) > 0 {
		palette := maps.Clone(ds.ProviderColors)
		if palette == nil {
			palette = make(map[string]string, len(opts.ProviderColors))
		}
		maps.Copy(palette, opts.ProviderColors)
		in.ProviderColorOf = chart.PaletteColors(palette)
	}
	if len(opts.CategoryColors) > 0 {
		in.CategoryColorOf = chart.PaletteColors(opts.CategoryColors)
	}
	return chart.Build(in, opts.BuildOptions()...)
}
