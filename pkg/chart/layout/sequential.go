package layout

import (
	"github.com/matzehuels/safetymap/pkg/chart"
)

// RowSpacing returns the row spacing Sequential uses for the given number of
// category and technique rows: RowSpacing, shrunk uniformly when the rows
// would not fit between the margins.
func RowSpacing(rows int, cfg Config) float64 {
	cfg = cfg.withDefaults()
	usable := cfg.Height - cfg.MarginTop - cfg.MarginBottom
	if rows == 0 || usable <= 0 {
		return cfg.RowSpacing
	}
	return min(cfg.RowSpacing, usable/float64(rows))
}

// Sequential lays out three vertical bands: categories, techniques and
// providers. Each category row is followed by its technique rows, in graph
// order, all sharing one row spacing.
func Sequential(g *chart.Graph, cfg Config) Result {
	cfg = cfg.withDefaults()
	res := newResult(NameSequential, cfg, len(g.Nodes))

	groups := groupsOf(g)
	rows := 0
	for _, grp := range groups {
		rows += 1 + len(grp.techniques)
	}
	spacing := RowSpacing(rows, cfg)

	catX := cfg.SequentialCategoryX * cfg.Width
	techX := cfg.SequentialTechniqueX * cfg.Width
	row := 0
	y := func() float64 { return cfg.MarginTop + (float64(row)+0.5)*spacing }
	for _, grp := range groups {
		res.set(grp.id, catX, y(), AnchorMiddle)
		row++
		for _, id := range grp.techniques {
			res.set(id, techX, y(), AnchorMiddle)
			row++
		}
	}

	placeProviders(res, providersOf(g), cfg.SequentialProviderX*cfg.Width, cfg)
	placeRemaining(res, g)
	return *res
}
