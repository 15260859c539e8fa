package layout

import (
	"sort"

	"github.com/matzehuels/safetymap/pkg/chart"
)

// group is a category node with the ids of its technique nodes, in graph
// order. Engines derive groups from the nodes themselves so graphs decoded
// from JSON lay out the same as freshly built ones.
type group struct {
	id         string
	name       string
	techniques []string
}

func groupsOf(g *chart.Graph) []*group {
	var out []*group
	byName := make(map[string]*group)
	for _, n := range g.Nodes {
		switch n.Kind {
		case chart.KindCategory:
			grp := &group{id: n.ID, name: n.Label}
			out = append(out, grp)
			byName[n.Label] = grp
		case chart.KindTechnique:
			if grp, ok := byName[n.Category]; ok {
				grp.techniques = append(grp.techniques, n.ID)
			}
		}
	}
	return out
}

func providersOf(g *chart.Graph) []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Kind == chart.KindProvider {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Extent is the vertical space a category group occupies: the header, the
// gap below it and one row per technique.
func Extent(techniques int, cfg Config) float64 {
	cfg = cfg.withDefaults()
	return cfg.CategoryHeight + cfg.HeaderGap + float64(techniques)*cfg.RowSpacing
}

// Balanced lays out categories in two columns of roughly equal height.
//
// Groups are taken in descending extent (ties by name) and each goes to the
// column with the smaller accumulated height, ties going left. Each column
// is then re-sorted by name and stacked top to bottom, vertically centered
// but never above MarginTop. Techniques sit TechniqueOffset inside their
// category towards the center, anchored so their labels read inwards.
func Balanced(g *chart.Graph, cfg Config) Result {
	cfg = cfg.withDefaults()
	res := newResult(NameBalanced, cfg, len(g.Nodes))

	groups := groupsOf(g)
	extent := make(map[*group]float64, len(groups))
	for _, grp := range groups {
		extent[grp] = Extent(len(grp.techniques), cfg)
	}

	order := append([]*group(nil), groups...)
	sort.SliceStable(order, func(i, j int) bool {
		if extent[order[i]] != extent[order[j]] {
			return extent[order[i]] > extent[order[j]]
		}
		return order[i].name < order[j].name
	})

	var columns [2][]*group
	var heights [2]float64
	for _, grp := range order {
		c := 0
		if heights[1] < heights[0] {
			c = 1
		}
		if len(columns[c]) > 0 {
			heights[c] += cfg.GroupGap
		}
		heights[c] += extent[grp]
		columns[c] = append(columns[c], grp)
	}

	for c, col := range columns {
		sort.SliceStable(col, func(i, j int) bool { return col[i].name < col[j].name })

		catX := cfg.LeftColumnX * cfg.Width
		techX := catX + cfg.TechniqueOffset
		anchor := AnchorEnd
		if c == 1 {
			catX = cfg.RightColumnX * cfg.Width
			techX = catX - cfg.TechniqueOffset
			anchor = AnchorStart
		}

		top := max(cfg.MarginTop, (cfg.Height-heights[c])/2)
		for _, grp := range col {
			res.set(grp.id, catX, top+cfg.CategoryHeight/2, AnchorMiddle)
			rows := top + cfg.CategoryHeight + cfg.HeaderGap
			for i, id := range grp.techniques {
				res.set(id, techX, rows+(float64(i)+0.5)*cfg.RowSpacing, anchor)
			}
			top += extent[grp] + cfg.GroupGap
		}
	}

	placeProviders(res, providersOf(g), cfg.Width/2, cfg)
	placeRemaining(res, g)
	return *res
}

// placeProviders stacks providers in one column centered as a block, never
// above MarginTop.
func placeProviders(res *Result, ids []string, x float64, cfg Config) {
	if len(ids) == 0 {
		return
	}
	block := float64(len(ids)-1) * cfg.ProviderSpacing
	top := max(cfg.MarginTop, (cfg.Height-block)/2)
	for i, id := range ids {
		res.set(id, x, top+float64(i)*cfg.ProviderSpacing, AnchorStart)
	}
}

// placeRemaining centers any node no engine rule placed (a technique whose
// category node is missing from a hand-edited graph), so every node always
// has a position.
func placeRemaining(res *Result, g *chart.Graph) {
	for _, n := range g.Nodes {
		if _, ok := res.Positions[n.ID]; !ok {
			res.set(n.ID, res.Width/2, res.Height/2, AnchorMiddle)
		}
	}
}
