package network

import (
	"bytes"
	"fmt"
	"html"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
)

const (
	providerRadius  = 10
	techniqueRadius = 5
	labelGap        = 9
	textColor       = "#1f2937"
	fontStack       = "font-family:Helvetica,Arial,sans-serif"
)

// RenderDirectSVG draws the chart at exactly the given positions without
// Graphviz. Labels follow anchors: "start" puts the label to the right of
// the node, "end" to the left, "middle" centered below it. Nodes without a
// finite position are not drawn, nor are their edges.
func RenderDirectSVG(g *chart.Graph, positions layout.Positions, anchors layout.Anchors, opts Options) []byte {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(int(math.Ceil(opts.Width)), int(math.Ceil(opts.Height)))
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	at := func(id string) (layout.Point, bool) {
		p, ok := positions[id]
		return p, ok && p.Finite()
	}

	canvas.Gid("edges")
	for _, e := range g.Edges {
		s, ok1 := at(e.Source)
		t, ok2 := at(e.Target)
		if !ok1 || !ok2 || !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}
		style := fmt.Sprintf("stroke:%s;stroke-opacity:0.6;stroke-width:%s", safeColor(e.Color), num(edgeWidth(e.Count)))
		if e.Kind == chart.EdgeCategoryTechnique {
			style += ";stroke-dasharray:4,3"
		}
		canvas.Line(px(s.X), px(s.Y), px(t.X), px(t.Y), style)
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range g.Nodes {
		p, ok := at(n.ID)
		if !ok {
			continue
		}
		anchor := anchors[n.ID]
		if !anchor.Valid() {
			anchor = layout.AnchorMiddle
		}
		drawNode(canvas, n, p, anchor)
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes()
}

func drawNode(canvas *svg.SVG, n chart.Node, p layout.Point, anchor layout.Anchor) {
	color := safeColor(n.Color)
	x, y := px(p.X), px(p.Y)

	canvas.Group(fmt.Sprintf(`id="%s" class="%s"`, html.EscapeString(n.ID), n.Kind))
	canvas.Title(tooltip(n))
	switch n.Kind {
	case chart.KindCategory:
		w, h := int(n.Width), int(n.Height)
		if w <= 0 {
			w = chart.DefaultMinCategoryWidth
		}
		if h <= 0 {
			h = chart.DefaultCategoryHeight
		}
		canvas.Roundrect(x-w/2, y-h/2, w, h, 6, 6, "fill:"+color)
		canvas.Text(x, y+4, n.Label, "fill:white;font-size:12px;font-weight:bold;text-anchor:middle;"+fontStack)
	case chart.KindProvider:
		canvas.Circle(x, y, providerRadius, "fill:"+color)
		label(canvas, n.Label, x, y, providerRadius, anchor, "font-size:12px;font-weight:bold")
	default:
		style := "fill:" + color
		if n.IsOrphan {
			style = fmt.Sprintf("fill:white;stroke:%s;stroke-width:1.5;stroke-dasharray:2,2", color)
		}
		canvas.Circle(x, y, techniqueRadius, style)
		label(canvas, n.Label, x, y, techniqueRadius, anchor, "font-size:11px")
	}
	canvas.Gend()
}

func label(canvas *svg.SVG, text string, x, y, r int, anchor layout.Anchor, style string) {
	style = fmt.Sprintf("fill:%s;%s;%s;text-anchor:%s", textColor, style, fontStack, anchor)
	switch anchor {
	case layout.AnchorStart:
		canvas.Text(x+r+labelGap/2, y+4, text, style)
	case layout.AnchorEnd:
		canvas.Text(x-r-labelGap/2, y+4, text, style)
	default:
		canvas.Text(x, y+r+labelGap+4, text, style)
	}
}

func tooltip(n chart.Node) string {
	switch {
	case n.Kind != chart.KindTechnique:
		return n.Label
	case n.IsOrphan:
		return fmt.Sprintf("%s (%s): no provider evidence", n.Label, n.Category)
	default:
		t := fmt.Sprintf("%s (%s): %d evidence records", n.Label, n.Category, n.EvidenceCount)
		if n.Description != "" {
			t += "\n" + n.Description
		}
		return t
	}
}

func px(v float64) int { return int(math.Round(v)) }
