// Package pkg provides the libraries behind safetymap, the unified chart of
// AI safety categories, techniques and the providers that use them.
//
// # Overview
//
// safetymap turns an evidence dataset (which provider uses which technique,
// with what confidence) into a network chart: categories and techniques on
// one side, providers on the other, edges for every piece of evidence. The
// user can rearrange the chart; the arrangement is saved and laid back over
// the computed layout whenever the dataset changes.
//
// # Architecture
//
//	Dataset file or URL
//	         ↓
//	    [dataset] package (decode and normalize)
//	         ↓
//	    [chart] package (unified graph, colours, label sizes)
//	         ↓
//	    [chart/layout] package (balanced, sequential, force; reconcile saved layout)
//	         ↓
//	    [render/network] package (SVG, DOT) → [render] (PNG, PDF)
//
// [pipeline] runs these stages with caching and is shared by the CLI and
// the HTTP server.
//
// # Quick Start
//
//	ds, _ := dataset.Load("safety.json")
//	g := chart.Build(chart.InputFromDataset(ds))
//
//	def, _ := layout.Compute(ctx, layout.NameBalanced, g, layout.DefaultConfig())
//	rl := layout.Reconcile(g, def, layoutstore.Loader(ctx, store, layoutstore.DefaultName, nil))
//
//	svg := network.RenderDirectSVG(g, rl.Positions, rl.Anchors, network.Options{})
//
// # Packages
//
// Domain:
//
//   - [dataset]: dataset types, JSON/YAML/TOML decoding, remote fetch
//   - [chart]: graph builder, palettes and text measurement
//   - [chart/layout]: layout engines and the reconciler
//   - [chart/force]: force-directed simulation used by the force engine and settle
//   - [render/network]: direct SVG and graphviz rendering
//   - [render]: PNG and PDF conversion with rsvg-convert
//
// Infrastructure:
//
//   - [cache]: file, redis and mongo backends with content-hash keys
//   - [layoutstore]: saved layout records on top of a cache
//   - [pipeline]: build, layout, render and settle with caching
//   - [httputil]: HTTP GET with retries for remote datasets
//   - [observability]: hooks for pipeline, cache and HTTP events
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version information set at build time
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/dataset
// [chart]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/chart
// [chart/layout]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/chart/layout
// [chart/force]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/chart/force
// [render/network]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/render/network
// [render]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/cache
// [layoutstore]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/layoutstore
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/pipeline
// [httputil]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/safetymap/pkg/buildinfo
package pkg
