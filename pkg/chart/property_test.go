package chart

import (
	"reflect"
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/safetymap/pkg/dataset"
)

// genInput draws small datasets with overlapping names, dangling category
// references and repeated evidence.
func genInput(t *rapid.T) Input {
	names := rapid.SampledFrom([]string{"a", "b", "c", "d-e", "e", "Data", "x y"})
	providers := rapid.SampledFrom([]string{"Acme", "acme", "Globex", "Initech"})

	nCat := rapid.IntRange(0, 4).Draw(t, "categories")
	var in Input
	for i := 0; i < nCat; i++ {
		in.Categories = append(in.Categories, dataset.Category{
			ID:   strconv.Itoa(i),
			Name: names.Draw(t, "category"),
		})
	}

	nTech := rapid.IntRange(0, 10).Draw(t, "techniques")
	for i := 0; i < nTech; i++ {
		in.Techniques = append(in.Techniques, dataset.Technique{
			ID:         strconv.Itoa(i),
			Name:       names.Draw(t, "technique"),
			CategoryID: strconv.Itoa(rapid.IntRange(0, nCat).Draw(t, "categoryId")),
		})
	}

	nEv := rapid.IntRange(0, 12).Draw(t, "evidence")
	for i := 0; i < nEv; i++ {
		in.Evidence = append(in.Evidence, dataset.EvidenceRecord{
			Provider:  providers.Draw(t, "provider"),
			Category:  rapid.SampledFrom(append([]string{UncategorizedName}, "a", "b", "Data")).Draw(t, "evCategory"),
			Technique: names.Draw(t, "evTechnique"),
		})
	}
	return in
}

func TestPropertyUniqueIDs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := Build(genInput(t))
		seen := make(map[string]bool)
		for _, id := range g.NodeIDs() {
			if seen[id] {
				t.Fatalf("duplicate node id %q", id)
			}
			seen[id] = true
		}
	})
}

func TestPropertyTechniqueEdges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := Build(genInput(t))

		catEdges := make(map[string]int)
		provEdges := make(map[string]int)
		for _, e := range g.Edges {
			if !g.Has(e.Source) || !g.Has(e.Target) {
				t.Fatalf("edge %s→%s references a missing node", e.Source, e.Target)
			}
			switch e.Kind {
			case EdgeCategoryTechnique:
				catEdges[e.Target]++
			case EdgeProviderTechnique:
				provEdges[e.Target]++
			}
		}

		for _, n := range g.NodesOfKind(KindTechnique) {
			if catEdges[n.ID] != 1 {
				t.Fatalf("%s has %d category edges, want 1", n.ID, catEdges[n.ID])
			}
			if n.IsOrphan != (provEdges[n.ID] == 0) {
				t.Fatalf("%s IsOrphan=%v with %d provider edges", n.ID, n.IsOrphan, provEdges[n.ID])
			}
		}
	})
}

func TestPropertyDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := genInput(t)
		a, b := Build(in), Build(in)
		if !reflect.DeepEqual(a.Nodes, b.Nodes) || !reflect.DeepEqual(a.Edges, b.Edges) {
			t.Fatal("Build is not deterministic")
		}
	})
}
