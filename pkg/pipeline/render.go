package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/render"
	"github.com/matzehuels/safetymap/pkg/render/network"
)

// Render generates output artifacts in the requested formats. The SVG is
// rendered at most once and reused for PNG and PDF.
func Render(ctx context.Context, g *chart.Graph, rl layout.Reconciled, opts Options) (map[string][]byte, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	netOpts := network.Options{Width: opts.Width, Height: opts.Height, Title: opts.Title}
	var svg []byte
	renderSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = RenderSVG(ctx, g, rl, opts.Renderer, netOpts)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = renderSVG()
		case FormatPNG:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.PNGScale)
			}
		case FormatPDF:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatJSON:
			data, err = json.MarshalIndent(Document{Graph: g, Layout: rl, Width: opts.Width, Height: opts.Height}, "", "  ")
		case FormatDOT:
			data = []byte(network.ToDOT(g, rl.Positions, netOpts))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderSVG draws the reconciled layout with the named renderer.
func RenderSVG(ctx context.Context, g *chart.Graph, rl layout.Reconciled, renderer string, opts network.Options) ([]byte, error) {
	switch renderer {
	case "", RendererDirect:
		return network.RenderDirectSVG(g, rl.Positions, rl.Anchors, opts), nil
	case RendererGraphviz:
		return network.RenderSVG(ctx, network.ToDOT(g, rl.Positions, opts))
	default:
		return nil, ValidateRenderer(renderer)
	}
}
