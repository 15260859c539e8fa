// Package layout positions the nodes of a unified chart graph.
//
// # Engines
//
// Every engine consumes a *chart.Graph and a [Config] and returns a [Result]
// holding a coordinate and a label anchor for every node:
//
//   - [Balanced]: categories split over two columns by greedy height
//     balancing, providers in a centered column between them
//   - [Sequential]: three fixed bands (categories, techniques, providers)
//     read left to right, rows shrinking uniformly when they would not fit
//   - [Force]: the sequential layout relaxed by a force simulation with all
//     nodes free
//
// [Compute] dispatches by name. Engines never mutate the graph and never fail;
// a zero Config field takes its value from [DefaultConfig].
//
// # Partial Relayout
//
// [NewSimulation] wraps pkg/chart/force for a graph and a coordinate map,
// freeing only the given node ids; [Settle] runs it to completion. This is
// how a dragged subset settles while everything else stays put.
//
// # Reconciliation
//
// [Reconcile] overlays a persisted [Record] on a freshly computed default. It
// prunes ids that no longer exist, ignores non-finite coordinates and always
// returns a position for every node:
//
//	def := layout.Balanced(g, cfg)
//	out := layout.Reconcile(g, def, loader)
//	// out.Source is "saved" or "default"
//	// out.Stats.Applied + out.Stats.NewNodes == len(g.Nodes)
package layout
