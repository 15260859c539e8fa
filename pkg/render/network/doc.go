// Package network renders the unified safety chart as a node-link diagram.
//
// Two renderers share the same inputs, a built [chart.Graph] plus the
// reconciled positions and label anchors:
//
//   - [ToDOT] + [RenderSVG]: Graphviz DOT rendered in-process by
//     github.com/goccy/go-graphviz with the neato engine. Every positioned
//     node is pinned, so Graphviz only routes edges and draws shapes.
//   - [RenderDirectSVG]: SVG written with github.com/ajstarks/svgo. It does
//     not depend on Graphviz and honours the label anchors exactly.
//
// Both produce SVG that [render.ToPDF] and [render.ToPNG] can convert.
//
//	out := layout.Reconcile(g, def, loader)
//	dot := network.ToDOT(g, out.Positions, network.Options{Width: 1200, Height: 800})
//	svg, err := network.RenderSVG(ctx, dot)
//
// [chart.Graph]: github.com/matzehuels/safetymap/pkg/chart.Graph
// [render.ToPDF]: github.com/matzehuels/safetymap/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/safetymap/pkg/render.ToPNG
package network
