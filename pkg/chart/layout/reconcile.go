package layout

import (
	"time"

	"github.com/matzehuels/safetymap/pkg/chart"
)

// Reconciliation sources.
const (
	SourceSaved   = "saved"
	SourceDefault = "default"
)

// Record is a persisted layout. Positions and LabelAnchors may cover any
// subset of a graph's nodes, including ids that no longer exist.
type Record struct {
	Positions    Positions `json:"positions"`
	LabelAnchors Anchors   `json:"labelAnchors,omitempty"`
	LayoutName   string    `json:"layoutName"`

	// Set by the store on save.
	Revision string    `json:"revision,omitempty"`
	SavedAt  time.Time `json:"savedAt,omitzero"`
}

// Loader attempts to load the persisted record. A nil record means none is
// stored. Errors are treated exactly like absence.
type Loader func() (*Record, error)

// Stats describes what Reconcile did.
type Stats struct {
	Applied  int `json:"applied"`  // persisted positions used
	Stale    int `json:"stale"`    // persisted ids not in the graph, pruned
	NewNodes int `json:"newNodes"` // nodes placed at their default position
	Invalid  int `json:"invalid"`  // persisted positions rejected as non-finite
}

// Reconciled is the final layout handed to a renderer.
type Reconciled struct {
	Positions  Positions `json:"positions"`
	Anchors    Anchors   `json:"labelAnchors"`
	LayoutName string    `json:"layoutName"`
	Source     string    `json:"source"`
	Stats      Stats     `json:"stats"`
}

// Record converts r into a persistable record.
func (r Reconciled) Record() *Record {
	return &Record{
		Positions:    r.Positions.Clone(),
		LabelAnchors: r.Anchors.Clone(),
		LayoutName:   r.LayoutName,
	}
}

// Reconcile overlays the persisted record returned by load on def.
//
// The result has a position and an anchor for exactly the nodes of g. Every
// node starts at its default position; persisted coordinates for live ids
// replace it when both coordinates are finite. Persisted ids that are not in
// g are pruned and counted as stale. A node whose persisted coordinate is
// missing or rejected counts as new, so Applied+NewNodes == len(g.Nodes).
//
// Reconcile never fails and never mutates its inputs. A failing or panicking
// load falls back to def.
func Reconcile(g *chart.Graph, def Result, load Loader) Reconciled {
	out := Reconciled{
		Positions:  make(Positions, len(g.Nodes)),
		Anchors:    make(Anchors, len(g.Nodes)),
		LayoutName: def.Name,
		Source:     SourceDefault,
	}

	live := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		live[n.ID] = true
		p, ok := def.Positions[n.ID]
		if !ok || !p.Finite() {
			p = Point{X: def.Width / 2, Y: def.Height / 2}
		}
		out.Positions[n.ID] = p
		a := def.Anchors[n.ID]
		if !a.Valid() {
			a = AnchorMiddle
		}
		out.Anchors[n.ID] = a
	}

	rec := safeLoad(load)
	if rec == nil {
		out.Stats.NewNodes = len(g.Nodes)
		return out
	}

	stale := make(map[string]bool)
	for id, p := range rec.Positions {
		switch {
		case !live[id]:
			stale[id] = true
		case p.Finite():
			out.Positions[id] = p
			out.Stats.Applied++
		default:
			out.Stats.Invalid++
		}
	}
	for id, a := range rec.LabelAnchors {
		switch {
		case !live[id]:
			stale[id] = true
		case a.Valid():
			out.Anchors[id] = a
		}
	}

	out.Stats.Stale = len(stale)
	out.Stats.NewNodes = len(g.Nodes) - out.Stats.Applied
	if out.Stats.Applied > 0 {
		out.Source = SourceSaved
		if ValidName(rec.LayoutName) {
			out.LayoutName = rec.LayoutName
		}
	}
	return out
}

func safeLoad(load Loader) (rec *Record) {
	if load == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			rec = nil
		}
	}()
	rec, err := load()
	if err != nil {
		return nil
	}
	return rec
}
