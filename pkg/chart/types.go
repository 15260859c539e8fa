package chart

import (
	"strings"

	"github.com/matzehuels/safetymap/pkg/dataset"
)

// =============================================================================
// Constants
// =============================================================================

// Node kinds.
type NodeKind string

const (
	KindProvider  NodeKind = "provider"
	KindCategory  NodeKind = "category"
	KindTechnique NodeKind = "technique"
)

// Edge kinds.
type EdgeKind string

const (
	EdgeCategoryTechnique EdgeKind = "category-technique"
	EdgeProviderTechnique EdgeKind = "provider-technique"
)

// UncategorizedName is the synthetic category for techniques whose category
// id matches no category.
const UncategorizedName = "Uncategorized"

// NeutralColor is used whenever no color can be resolved.
const NeutralColor = "#9ca3af"

// Category label sizing.
const (
	DefaultMinCategoryWidth = 80
	DefaultCategoryPadding  = 24
	DefaultCategoryHeight   = 28
)

// =============================================================================
// Node
// =============================================================================

// Node is one vertex of the unified chart. Kind selects which of the
// optional fields are meaningful.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label"`
	Color string   `json:"color,omitempty"`

	// category
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// technique
	Category        string   `json:"category,omitempty"`
	IsOrphan        bool     `json:"isOrphan,omitempty"`
	Description     string   `json:"description,omitempty"`
	LifecycleStages []string `json:"lifecycleStages,omitempty"`
	EvidenceCount   int      `json:"evidenceCount,omitempty"`
}

// ProviderID returns the node id of a provider.
func ProviderID(name string) string { return "provider-" + name }

// CategoryID returns the node id of a category.
func CategoryID(name string) string { return "category-" + name }

// TechniqueID returns the node id of a technique within a category.
func TechniqueID(category, name string) string { return "technique-" + category + "-" + name }

// KindOf returns the kind encoded in a node id's prefix, or "" if the id
// has no known prefix.
func KindOf(id string) NodeKind {
	for _, kind := range []NodeKind{KindProvider, KindCategory, KindTechnique} {
		if strings.HasPrefix(id, string(kind)+"-") {
			return kind
		}
	}
	return ""
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects a category or provider to a technique.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Color  string   `json:"color,omitempty"`

	// provider-technique only
	Evidence *dataset.EvidenceRecord `json:"evidence,omitempty"`
	Count    int                     `json:"count,omitempty"`
}

// =============================================================================
// Graph
// =============================================================================

// Group is one category with its sorted, deduplicated technique names.
type Group struct {
	Category   string   `json:"category"`
	Techniques []string `json:"techniques"`
}

// Graph is the immutable output of Build.
type Graph struct {
	Nodes     []Node   `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	Groups    []Group  `json:"groups"`
	Providers []string `json:"providers"`

	index map[string]int
}

// Node returns the node with the given id. Graphs decoded from JSON have no
// index and fall back to a linear scan.
func (g *Graph) Node(id string) (Node, bool) {
	if g.index == nil {
		for _, n := range g.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return Node{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Has reports whether id is a node of g.
func (g *Graph) Has(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodeIDs returns all node ids in graph order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// NodesOfKind returns the nodes of one kind in graph order.
func (g *Graph) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Reindex rebuilds the id index. Build indexes its output; call Reindex on
// graphs decoded from JSON before sharing them between goroutines.
func (g *Graph) Reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
}
