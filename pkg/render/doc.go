// Package render converts rendered charts between output formats.
//
// The chart itself is drawn by the [network] subpackage, which produces SVG.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool
// (from librsvg):
//
//	svg := network.RenderDirectSVG(g, positions, anchors, network.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [network]: github.com/matzehuels/safetymap/pkg/render/network
package render
