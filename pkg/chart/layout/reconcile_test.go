package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/dataset"
)

func loaded(rec *Record) Loader {
	return func() (*Record, error) { return rec, nil }
}

func assertKeySet(t *testing.T, g *chart.Graph, out Reconciled) {
	t.Helper()
	if len(out.Positions) != len(g.Nodes) || len(out.Anchors) != len(g.Nodes) {
		t.Fatalf("got %d positions / %d anchors for %d nodes", len(out.Positions), len(out.Anchors), len(g.Nodes))
	}
	for _, id := range g.NodeIDs() {
		if _, ok := out.Positions[id]; !ok {
			t.Fatalf("missing position for %s", id)
		}
	}
	if out.Stats.Applied+out.Stats.NewNodes != len(g.Nodes) {
		t.Fatalf("applied %d + new %d != %d nodes", out.Stats.Applied, out.Stats.NewNodes, len(g.Nodes))
	}
}

func TestReconcileNoRecord(t *testing.T) {
	g := sampleGraph()
	def := Balanced(g, DefaultConfig())

	tests := []struct {
		name string
		load Loader
	}{
		{"nil loader", nil},
		{"nil record", loaded(nil)},
		{"load error", func() (*Record, error) { return nil, fmt.Errorf("store down") }},
		{"load panic", func() (*Record, error) { panic("corrupt") }},
		{"record with error", func() (*Record, error) {
			return &Record{Positions: Positions{"category-Data": {X: 1, Y: 1}}}, fmt.Errorf("partial")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Reconcile(g, def, tt.load)
			assertKeySet(t, g, out)
			if out.Source != SourceDefault || out.LayoutName != NameBalanced {
				t.Errorf("source=%q layout=%q, want default/balanced", out.Source, out.LayoutName)
			}
			if out.Stats != (Stats{NewNodes: len(g.Nodes)}) {
				t.Errorf("stats = %+v", out.Stats)
			}
			if !reflect.DeepEqual(out.Positions, def.Positions) || !reflect.DeepEqual(out.Anchors, def.Anchors) {
				t.Error("output should equal the default layout")
			}
		})
	}
}

func TestReconcileApplies(t *testing.T) {
	g := sampleGraph()
	def := Balanced(g, DefaultConfig())
	rec := &Record{
		Positions: Positions{
			"category-Data":     {X: 10, Y: 20},
			"technique-Data-t0": {X: 30, Y: 40},
		},
		LabelAnchors: Anchors{
			"category-Data":     AnchorStart,
			"technique-Data-t0": Anchor("sideways"),
		},
		LayoutName: NameSequential,
	}
	out := Reconcile(g, def, loaded(rec))
	assertKeySet(t, g, out)

	if out.Source != SourceSaved || out.LayoutName != NameSequential {
		t.Errorf("source=%q layout=%q, want saved/sequential", out.Source, out.LayoutName)
	}
	want := Stats{Applied: 2, NewNodes: len(g.Nodes) - 2}
	if out.Stats != want {
		t.Errorf("stats = %+v, want %+v", out.Stats, want)
	}
	if out.Positions["category-Data"] != (Point{10, 20}) {
		t.Errorf("saved position not applied: %+v", out.Positions["category-Data"])
	}
	if out.Positions["category-Training"] != def.Positions["category-Training"] {
		t.Error("unsaved node should keep its default position")
	}
	if out.Anchors["category-Data"] != AnchorStart {
		t.Errorf("valid saved anchor not applied: %q", out.Anchors["category-Data"])
	}
	if out.Anchors["technique-Data-t0"] != def.Anchors["technique-Data-t0"] {
		t.Errorf("invalid saved anchor should be ignored, got %q", out.Anchors["technique-Data-t0"])
	}
}

// Scenario C: a persisted id that is no longer in the graph is pruned.
func TestReconcilePrunesStale(t *testing.T) {
	g := sampleGraph()
	def := Balanced(g, DefaultConfig())
	rec := &Record{
		Positions: Positions{
			"category-Data":       {X: 1, Y: 2},
			"technique-Gone-away": {X: 3, Y: 4},
		},
		LabelAnchors: Anchors{"technique-Gone-away": AnchorEnd},
		LayoutName:   NameBalanced,
	}
	out := Reconcile(g, def, loaded(rec))
	assertKeySet(t, g, out)

	if out.Stats.Stale != 1 {
		t.Errorf("Stale = %d, want 1", out.Stats.Stale)
	}
	if _, ok := out.Positions["technique-Gone-away"]; ok {
		t.Error("stale id present in positions")
	}
	if _, ok := out.Anchors["technique-Gone-away"]; ok {
		t.Error("stale id present in anchors")
	}
	// input record untouched
	if _, ok := rec.Positions["technique-Gone-away"]; !ok {
		t.Error("Reconcile mutated the record")
	}
}

// Scenario D: a NaN coordinate falls back to the default position.
func TestReconcileRejectsNonFinite(t *testing.T) {
	g := sampleGraph()
	def := Balanced(g, DefaultConfig())
	rec := &Record{
		Positions: Positions{
			"category-Data":       {X: math.NaN(), Y: 5},
			"category-Training":   {X: 5, Y: math.Inf(1)},
			"category-Governance": {X: 7, Y: 8},
		},
		LayoutName: NameBalanced,
	}
	out := Reconcile(g, def, loaded(rec))
	assertKeySet(t, g, out)

	for _, id := range []string{"category-Data", "category-Training"} {
		if out.Positions[id] != def.Positions[id] {
			t.Errorf("%s = %+v, want default %+v", id, out.Positions[id], def.Positions[id])
		}
	}
	want := Stats{Applied: 1, Invalid: 2, NewNodes: len(g.Nodes) - 1}
	if out.Stats != want {
		t.Errorf("stats = %+v, want %+v", out.Stats, want)
	}
	if out.Source != SourceSaved {
		t.Errorf("source = %q", out.Source)
	}
}

func TestReconcileAllInvalidIsDefault(t *testing.T) {
	g := sampleGraph()
	def := Sequential(g, DefaultConfig())
	rec := &Record{
		Positions:  Positions{"category-Data": {X: math.NaN(), Y: math.NaN()}},
		LayoutName: NameBalanced,
	}
	out := Reconcile(g, def, loaded(rec))
	if out.Source != SourceDefault || out.LayoutName != NameSequential {
		t.Errorf("source=%q layout=%q, want default/sequential", out.Source, out.LayoutName)
	}
}

func TestReconcileUnknownLayoutName(t *testing.T) {
	g := sampleGraph()
	def := Balanced(g, DefaultConfig())
	rec := &Record{
		Positions:  Positions{"category-Data": {X: 1, Y: 1}},
		LayoutName: "radial",
	}
	out := Reconcile(g, def, loaded(rec))
	if out.LayoutName != NameBalanced {
		t.Errorf("LayoutName = %q, want fallback to balanced", out.LayoutName)
	}
}

func TestReconcileIncompleteDefault(t *testing.T) {
	g := sampleGraph()
	def := Result{Name: NameBalanced, Width: 100, Height: 50, Positions: Positions{
		"category-Data": {X: math.NaN(), Y: 1},
		"not-a-node":    {X: 1, Y: 1},
	}}
	out := Reconcile(g, def, nil)
	assertKeySet(t, g, out)
	if p := out.Positions["category-Data"]; p != (Point{50, 25}) {
		t.Errorf("unplaced node = %+v, want canvas center", p)
	}
	if _, ok := out.Positions["not-a-node"]; ok {
		t.Error("default entries for unknown ids must not leak")
	}
}

func TestReconciledRecord(t *testing.T) {
	g := sampleGraph()
	out := Reconcile(g, Balanced(g, DefaultConfig()), nil)
	rec := out.Record()
	if !reflect.DeepEqual(rec.Positions, out.Positions) || rec.LayoutName != out.LayoutName {
		t.Error("Record() should carry positions and layout name")
	}
	rec.Positions["category-Data"] = Point{-1, -1}
	if out.Positions["category-Data"] == (Point{-1, -1}) {
		t.Error("Record() must copy positions")
	}
}

func TestPointJSON(t *testing.T) {
	var rec Record
	data := `{
		"positions": {
			"a": {"x": 1.5, "y": 2},
			"b": {"x": "oops", "y": 2},
			"c": {"y": 3},
			"d": null,
			"e": "garbage"
		},
		"labelAnchors": {"a": "end"},
		"layoutName": "balanced"
	}`
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rec.Positions["a"] != (Point{1.5, 2}) {
		t.Errorf("a = %+v", rec.Positions["a"])
	}
	for _, id := range []string{"b", "c", "d", "e"} {
		if p, ok := rec.Positions[id]; !ok || p.Finite() {
			t.Errorf("%s = %+v (present %v), want non-finite", id, p, ok)
		}
	}

	out, err := json.Marshal(Positions{"n": {X: math.NaN(), Y: 4}, "f": {X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"f":{"x":1,"y":2},"n":{"x":null,"y":4}}`; string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}
}

// =============================================================================
// Properties
// =============================================================================

func genGraph(t *rapid.T) *chart.Graph {
	nCat := rapid.IntRange(0, 6).Draw(t, "categories")
	var in chart.Input
	for i := 0; i < nCat; i++ {
		in.Categories = append(in.Categories, dataset.Category{ID: fmt.Sprint(i), Name: fmt.Sprintf("c%d", i)})
	}
	nTech := rapid.IntRange(0, 30).Draw(t, "techniques")
	for i := 0; i < nTech; i++ {
		in.Techniques = append(in.Techniques, dataset.Technique{
			Name:       fmt.Sprintf("t%d", rapid.IntRange(0, 12).Draw(t, "name")),
			CategoryID: fmt.Sprint(rapid.IntRange(0, nCat).Draw(t, "category")),
		})
	}
	nEv := rapid.IntRange(0, 10).Draw(t, "evidence")
	for i := 0; i < nEv; i++ {
		in.Evidence = append(in.Evidence, dataset.EvidenceRecord{
			Provider:  rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "provider"),
			Category:  fmt.Sprintf("c%d", rapid.IntRange(0, nCat).Draw(t, "evCategory")),
			Technique: fmt.Sprintf("t%d", rapid.IntRange(0, 12).Draw(t, "evTechnique")),
		})
	}
	return chart.Build(in)
}

func TestPropertyBalancedCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		r := Balanced(g, DefaultConfig())
		if len(r.Positions) != len(g.Nodes) {
			t.Fatalf("%d positions for %d nodes", len(r.Positions), len(g.Nodes))
		}
		columnY := map[float64]map[float64]string{}
		for _, n := range g.NodesOfKind(chart.KindCategory) {
			p, ok := r.Positions[n.ID]
			if !ok {
				t.Fatalf("no position for %s", n.ID)
			}
			if columnY[p.X] == nil {
				columnY[p.X] = map[float64]string{}
			}
			if other, dup := columnY[p.X][p.Y]; dup {
				t.Fatalf("%s and %s share y=%v in column x=%v", n.ID, other, p.Y, p.X)
			}
			columnY[p.X][p.Y] = n.ID
		}
	})
}

func TestPropertyReconcileInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		def := Balanced(g, DefaultConfig())

		var rec *Record
		if rapid.Bool().Draw(t, "hasRecord") {
			rec = &Record{Positions: Positions{}, LabelAnchors: Anchors{}}
			ids := append(g.NodeIDs(), "category-gone", "technique-x-gone", "provider-gone")
			n := rapid.IntRange(0, len(ids)).Draw(t, "saved")
			for i := 0; i < n; i++ {
				id := rapid.SampledFrom(ids).Draw(t, "id")
				x := rapid.SampledFrom([]float64{1, 2.5, math.NaN(), math.Inf(-1)}).Draw(t, "x")
				rec.Positions[id] = Point{X: x, Y: 3}
				rec.LabelAnchors[id] = rapid.SampledFrom([]Anchor{AnchorStart, AnchorEnd, "bogus"}).Draw(t, "anchor")
			}
		}

		out := Reconcile(g, def, loaded(rec))
		if out.Stats.Applied+out.Stats.NewNodes != len(g.Nodes) {
			t.Fatalf("applied %d + new %d != %d", out.Stats.Applied, out.Stats.NewNodes, len(g.Nodes))
		}
		if len(out.Positions) != len(g.Nodes) || len(out.Anchors) != len(g.Nodes) {
			t.Fatalf("key set size %d/%d, want %d", len(out.Positions), len(out.Anchors), len(g.Nodes))
		}
		for _, id := range g.NodeIDs() {
			p, ok := out.Positions[id]
			if !ok || !p.Finite() {
				t.Fatalf("%s: position %+v present=%v", id, p, ok)
			}
			if !out.Anchors[id].Valid() {
				t.Fatalf("%s: anchor %q", id, out.Anchors[id])
			}
		}
	})
}
