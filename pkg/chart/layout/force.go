package layout

import (
	"context"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/force"
)

// NewSimulation configures a force simulation over g starting from
// positions. Only the ids in free move; every other node is pinned.
func NewSimulation(g *chart.Graph, positions Positions, free []string, cfg force.Config) *force.Simulation {
	start := make(map[string]r2.Vec, len(positions))
	for id, p := range positions {
		if p.Finite() {
			start[id] = r2.Vec{X: p.X, Y: p.Y}
		}
	}
	freeSet := make(map[string]bool, len(free))
	for _, id := range free {
		freeSet[id] = true
	}
	return force.New(g.Nodes, g.Edges, start, freeSet, cfg)
}

// Settle frees the given nodes, runs the simulation until it cools (or
// MaxTicks, or ctx is done) and returns a new coordinate map. Pinned nodes
// keep their coordinates exactly. On cancellation the partially settled
// positions are returned along with the context error.
func Settle(ctx context.Context, g *chart.Graph, positions Positions, free []string, cfg Config) (Positions, error) {
	cfg = cfg.withDefaults()
	sim := NewSimulation(g, positions, free, cfg.Force)
	_, err := sim.Run(ctx, cfg.MaxTicks)

	out := positions.Clone()
	if out == nil {
		out = make(Positions, len(g.Nodes))
	}
	for id, v := range sim.Positions() {
		if p, ok := out[id]; ok && p.Finite() && sim.Pinned(id) {
			continue
		}
		out[id] = Point{X: v.X, Y: v.Y}
	}
	return out, err
}

// Force is the force-directed fallback layout: the sequential layout with
// every node released to the simulation. Anchors are the sequential ones.
func Force(ctx context.Context, g *chart.Graph, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	seed := Sequential(g, cfg)

	positions, err := Settle(ctx, g, seed.Positions, g.NodeIDs(), cfg)
	return Result{
		Name:      NameForce,
		Positions: positions,
		Anchors:   seed.Anchors,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, err
}
