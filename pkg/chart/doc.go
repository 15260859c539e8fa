// Package chart builds the unified chart graph from a dataset.
//
// # Overview
//
// [Build] turns categories, techniques and evidence records into a node/edge
// [Graph] with derived attributes (evidence presence, colors, measured label
// widths). The graph is the only input of the layout engines in
// pkg/chart/layout and of the renderers in pkg/render/network.
//
// # Nodes
//
// Node ids are derived from display names and are unique per build:
//
//	provider-<name>                 one per selected provider
//	category-<name>                 one per category
//	technique-<category>-<name>     one per technique within its category
//
// Nodes are emitted providers first, then each category followed by its
// techniques. Categories and techniques are sorted lexicographically; the
// order is load-bearing because both deterministic layouts stack rows in
// graph order.
//
// # Edges
//
// Every technique has exactly one category→technique edge. A
// provider→technique edge exists iff at least one evidence record links the
// provider to that technique; it carries the first such record (in input
// order) and the number of matching records. A technique without provider
// edges is an orphan.
//
// # Collaborators
//
// Colors and text measurement are injected: [Input.CategoryColorOf] and
// [Input.ProviderColorOf] are consulted for colors (see [PaletteColors] for
// the case-insensitive palette lookup), and a [TextMeasurer] sizes category
// labels. [DefaultMeasurer] measures with the fixed 7x13 bitmap face from
// golang.org/x/image.
//
// Build never fails: unknown category references go to [UncategorizedName],
// missing colors fall back to [NeutralColor].
package chart
