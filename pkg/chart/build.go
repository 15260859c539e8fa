package chart

import (
	"fmt"
	"slices"
	"sort"

	"github.com/matzehuels/safetymap/pkg/dataset"
)

// Input is everything Build consumes. The color functions are optional.
type Input struct {
	Categories []dataset.Category
	Techniques []dataset.Technique
	Evidence   []dataset.EvidenceRecord

	CategoryColorOf ColorFunc
	ProviderColorOf ColorFunc
}

// InputFromDataset wires a loaded dataset into an Input, using its provider
// palette for provider colors.
func InputFromDataset(ds *dataset.Dataset) Input {
	return Input{
		Categories:      ds.Categories,
		Techniques:      ds.Techniques,
		Evidence:        ds.Evidence,
		ProviderColorOf: PaletteColors(ds.ProviderColors),
	}
}

// Sizing controls category node dimensions.
type Sizing struct {
	MinCategoryWidth float64
	CategoryPadding  float64
	CategoryHeight   float64
}

// DefaultSizing returns the standard category sizing.
func DefaultSizing() Sizing {
	return Sizing{
		MinCategoryWidth: DefaultMinCategoryWidth,
		CategoryPadding:  DefaultCategoryPadding,
		CategoryHeight:   DefaultCategoryHeight,
	}
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	measure   TextMeasurer
	providers map[string]bool
	sizing    Sizing
}

// WithMeasurer sets the text measurer used for category widths.
func WithMeasurer(m TextMeasurer) Option {
	return func(o *buildOptions) {
		if m != nil {
			o.measure = m
		}
	}
}

// WithProviders restricts the selected providers to names. A nil slice
// leaves the selection unrestricted; an empty non-nil slice selects none.
func WithProviders(names []string) Option {
	return func(o *buildOptions) {
		if names == nil {
			o.providers = nil
			return
		}
		o.providers = make(map[string]bool, len(names))
		for _, n := range names {
			o.providers[n] = true
		}
	}
}

// WithSizing overrides the category sizing.
func WithSizing(s Sizing) Option {
	return func(o *buildOptions) { o.sizing = s }
}

type evidenceKey struct {
	provider, category, technique string
}

type evidenceEntry struct {
	first dataset.EvidenceRecord
	count int
}

type group struct {
	color      string
	techniques map[string]dataset.Technique
}

// Build derives the unified chart graph. It is deterministic and never fails.
func Build(in Input, opts ...Option) *Graph {
	o := buildOptions{measure: DefaultMeasurer, sizing: DefaultSizing()}
	for _, opt := range opts {
		opt(&o)
	}

	groups, categoryNames := groupTechniques(in.Categories, in.Techniques)
	providers := selectProviders(in.Evidence, o.providers)

	index := make(map[evidenceKey]*evidenceEntry)
	for _, rec := range in.Evidence {
		k := evidenceKey{rec.Provider, rec.Category, rec.Technique}
		if e, ok := index[k]; ok {
			e.count++
			continue
		}
		index[k] = &evidenceEntry{first: rec, count: 1}
	}

	g := &Graph{Providers: providers}
	providerColors := make(map[string]string, len(providers))

	for _, p := range providers {
		c := resolve(lookup(in.ProviderColorOf, p))
		providerColors[p] = c
		g.Nodes = append(g.Nodes, Node{ID: ProviderID(p), Kind: KindProvider, Label: p, Color: c})
	}

	used := make(map[string]bool)
	var providerEdges []Edge
	for _, cat := range categoryNames {
		grp := groups[cat]
		catColor := resolve(grp.color, lookup(in.CategoryColorOf, cat))
		catID := CategoryID(cat)

		g.Nodes = append(g.Nodes, Node{
			ID:     catID,
			Kind:   KindCategory,
			Label:  cat,
			Color:  catColor,
			Width:  max(o.sizing.MinCategoryWidth, o.measure.Measure(cat)+o.sizing.CategoryPadding),
			Height: o.sizing.CategoryHeight,
		})

		names := make([]string, 0, len(grp.techniques))
		for name := range grp.techniques {
			names = append(names, name)
		}
		sort.Strings(names)
		g.Groups = append(g.Groups, Group{Category: cat, Techniques: names})

		for _, name := range names {
			t := grp.techniques[name]
			techID := uniqueID(used, TechniqueID(cat, name))
			count := 0
			for _, p := range providers {
				e, ok := index[evidenceKey{p, cat, name}]
				if !ok {
					continue
				}
				count += e.count
				rec := e.first
				rec.Evidence = slices.Clone(rec.Evidence)
				providerEdges = append(providerEdges, Edge{
					Source:   ProviderID(p),
					Target:   techID,
					Kind:     EdgeProviderTechnique,
					Color:    providerColors[p],
					Evidence: &rec,
					Count:    e.count,
				})
			}

			g.Nodes = append(g.Nodes, Node{
				ID:              techID,
				Kind:            KindTechnique,
				Label:           name,
				Color:           catColor,
				Category:        cat,
				IsOrphan:        count == 0,
				Description:     t.Description,
				LifecycleStages: slices.Clone(t.LifecycleStages),
				EvidenceCount:   count,
			})
			g.Edges = append(g.Edges, Edge{
				Source: catID,
				Target: techID,
				Kind:   EdgeCategoryTechnique,
				Color:  catColor,
			})
		}
	}
	g.Edges = append(g.Edges, providerEdges...)

	g.Reindex()
	return g
}

// uniqueID returns id, or id with a numeric suffix when dashes in category
// and technique names make two technique ids collide ("a-b"/"c" vs "a"/"b-c").
func uniqueID(used map[string]bool, id string) string {
	out := id
	for n := 2; used[out]; n++ {
		out = fmt.Sprintf("%s~%d", id, n)
	}
	used[out] = true
	return out
}

// groupTechniques buckets techniques by resolved category name. Duplicate
// technique names within a category keep their first occurrence.
func groupTechniques(categories []dataset.Category, techniques []dataset.Technique) (map[string]*group, []string) {
	byID := make(map[string]dataset.Category, len(categories))
	groups := make(map[string]*group)
	for _, c := range categories {
		byID[c.ID] = c
		if _, ok := groups[c.Name]; !ok {
			groups[c.Name] = &group{color: c.Color, techniques: make(map[string]dataset.Technique)}
		}
	}

	for _, t := range techniques {
		name := UncategorizedName
		if c, ok := byID[t.CategoryID]; ok {
			name = c.Name
		}
		grp, ok := groups[name]
		if !ok {
			grp = &group{techniques: make(map[string]dataset.Technique)}
			groups[name] = grp
		}
		if _, dup := grp.techniques[t.Name]; !dup {
			grp.techniques[t.Name] = t
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names
}

// selectProviders returns the sorted distinct providers in the evidence,
// restricted to filter when it is non-nil.
func selectProviders(evidence []dataset.EvidenceRecord, filter map[string]bool) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, rec := range evidence {
		if seen[rec.Provider] {
			continue
		}
		seen[rec.Provider] = true
		if filter != nil && !filter[rec.Provider] {
			continue
		}
		out = append(out, rec.Provider)
	}
	sort.Strings(out)
	return out
}
