package force

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/safetymap/pkg/chart"
)

// Placement of nodes without a starting coordinate (phyllotaxis spiral).
const (
	initialRadius = 10
	distanceMin2  = 1
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

type body struct {
	id     string
	kind   chart.NodeKind
	pos    r2.Vec
	vel    r2.Vec
	pinned bool
	charge float64
	radius float64
}

type link struct {
	source, target     int
	distance, strength float64
	bias               float64 // share of the correction applied to the target
}

// Simulation is a steppable force layout over a fixed node set.
// It is not safe for concurrent use.
type Simulation struct {
	cfg    Config
	bodies []body
	index  map[string]int
	links  []link
	alpha  float64
	ticks  int
	rng    *rand.Rand
}

// New configures a simulation.
//
// start gives the initial coordinate of each node; nodes missing from it are
// placed on a spiral around the origin. Nodes in free move, every other node
// is pinned at its starting coordinate. Edges referencing unknown nodes,
// self-loops and edges between two pinned nodes are ignored.
func New(nodes []chart.Node, edges []chart.Edge, start map[string]r2.Vec, free map[string]bool, cfg Config) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		bodies: make([]body, len(nodes)),
		index:  make(map[string]int, len(nodes)),
		alpha:  cfg.Alpha,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}

	for i, n := range nodes {
		b := body{id: n.ID, kind: n.Kind, pinned: !free[n.ID]}
		if p, ok := start[n.ID]; ok {
			b.pos = p
		} else {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			b.pos = r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
		}
		if !b.pinned {
			b.charge = cfg.charge(n.Kind)
			b.radius = cfg.radius(n.Kind)
		}
		s.bodies[i] = b
		s.index[n.ID] = i
	}

	degree := simple.NewDirectedGraph()
	for i := range s.bodies {
		degree.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		si, ok1 := s.index[e.Source]
		ti, ok2 := s.index[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		if s.bodies[si].pinned && s.bodies[ti].pinned {
			continue
		}
		dist, strength := cfg.link(e.Kind)
		s.links = append(s.links, link{source: si, target: ti, distance: dist, strength: strength})
		degree.SetEdge(degree.NewEdge(simple.Node(si), simple.Node(ti)))
	}

	count := func(i int) float64 {
		id := int64(i)
		return float64(degree.From(id).Len() + degree.To(id).Len())
	}
	for k := range s.links {
		l := &s.links[k]
		cs, ct := count(l.source), count(l.target)
		l.bias = cs / (cs + ct)
	}

	return s
}

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (s.cfg.AlphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCollide()

	keep := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.vel = r2.Vec{}
			continue
		}
		b.vel = r2.Scale(keep, b.vel)
		b.pos = r2.Add(b.pos, b.vel)
	}
	s.ticks++
}

// Run ticks until alpha drops below AlphaMin, maxTicks steps have been
// taken (maxTicks <= 0 means no limit) or ctx is done. It returns the
// number of ticks performed.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for !s.Settled() && (maxTicks <= 0 || n < maxTicks) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		s.Tick()
		n++
	}
	return n, nil
}

// Settled reports whether alpha has cooled below AlphaMin.
func (s *Simulation) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Reheat sets alpha, typically after the caller moved a node.
func (s *Simulation) Reheat(alpha float64) { s.alpha = alpha }

// Ticks returns the number of ticks performed so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Links returns the number of links taking part in the simulation.
func (s *Simulation) Links() int { return len(s.links) }

// Pinned reports whether id is held in place.
func (s *Simulation) Pinned(id string) bool {
	i, ok := s.index[id]
	return ok && s.bodies[i].pinned
}

// Position returns the current coordinate of id.
func (s *Simulation) Position(id string) (r2.Vec, bool) {
	i, ok := s.index[id]
	if !ok {
		return r2.Vec{}, false
	}
	return s.bodies[i].pos, true
}

// Positions returns a snapshot of every node's coordinate.
func (s *Simulation) Positions() map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = b.pos
	}
	return out
}

// =============================================================================
// Forces
// =============================================================================

func (s *Simulation) push(i int, dv r2.Vec) {
	if b := &s.bodies[i]; !b.pinned {
		b.vel = r2.Add(b.vel, dv)
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyLinks pulls linked nodes towards their rest distance.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := &s.bodies[l.source], &s.bodies[l.target]
		d := r2.Sub(r2.Add(tgt.pos, tgt.vel), r2.Add(src.pos, src.vel))
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		n := r2.Norm(d)
		d = r2.Scale((n-l.distance)/n*s.alpha*l.strength, d)
		s.push(l.target, r2.Scale(-l.bias, d))
		s.push(l.source, r2.Scale(1-l.bias, d))
	}
}

// applyCharge applies pairwise repulsion. Node counts are small enough that
// the exact O(n²) sum beats building a quadtree.
func (s *Simulation) applyCharge() {
	for i := range s.bodies {
		if s.bodies[i].pinned {
			continue
		}
		for j := range s.bodies {
			other := &s.bodies[j]
			if i == j || other.charge == 0 {
				continue
			}
			d := r2.Sub(other.pos, s.bodies[i].pos)
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			l := r2.Norm2(d)
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			s.push(i, r2.Scale(other.charge*s.alpha/l, d))
		}
	}
}

// applyCollide separates overlapping nodes, splitting the correction by
// relative area.
func (s *Simulation) applyCollide() {
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			r := a.radius + b.radius
			if r == 0 || (a.pinned && b.pinned) {
				continue
			}
			d := r2.Sub(r2.Add(a.pos, a.vel), r2.Add(b.pos, b.vel))
			l := r2.Norm2(d)
			if l >= r*r {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
				l += d.X * d.X
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
				l += d.Y * d.Y
			}
			n := math.Sqrt(l)
			d = r2.Scale((r-n)/n*s.cfg.CollideStrength, d)
			ra2, rb2 := a.radius*a.radius, b.radius*b.radius
			share := rb2 / (ra2 + rb2)
			s.push(i, r2.Scale(share, d))
			s.push(j, r2.Scale(-(1 - share), d))
		}
	}
}
