package network

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
)

// Options configures chart rendering.
type Options struct {
	// Width and Height are the canvas size in pixels. Zero uses the layout
	// defaults.
	Width  float64
	Height float64

	// Title is written as the SVG document title when non-empty.
	Title string
}

func (o Options) withDefaults() Options {
	def := layout.DefaultConfig()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

// ToDOT converts a positioned chart to Graphviz DOT for the neato engine.
//
// Every node with a finite position is pinned with pos="x,y!". Graphviz puts
// the origin at the bottom left, so y is flipped against opts.Height. Nodes
// without a usable position are left for neato to place.
func ToDOT(g *chart.Graph, positions layout.Positions, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontname=\"Helvetica\", fontsize=11, margin=\"0.08,0.04\"];\n")
	buf.WriteString("  edge [penwidth=1];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n)
		if p, ok := positions[n.ID]; ok && p.Finite() {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(p.X), num(opts.Height-p.Y)))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}
		fmt.Fprintf(&buf, "  %s -- %s [%s];\n", dotQuote(e.Source), dotQuote(e.Target), strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n chart.Node) []string {
	color := safeColor(n.Color)
	attrs := []string{"label=" + dotQuote(n.Label)}
	switch n.Kind {
	case chart.KindProvider:
		attrs = append(attrs, "shape=ellipse", fmt.Sprintf("fillcolor=%q", color), "fontcolor=white")
	case chart.KindCategory:
		attrs = append(attrs,
			"shape=box", "style=\"rounded,filled\"",
			fmt.Sprintf("fillcolor=%q", color), "fontcolor=white",
			fmt.Sprintf("width=%s", num(n.Width/72)),
			fmt.Sprintf("height=%s", num(n.Height/72)),
			"fixedsize=true",
		)
	default:
		attrs = append(attrs, "shape=point", "width=0.12", fmt.Sprintf("fillcolor=%q", color), "xlabel="+dotQuote(n.Label))
		if n.IsOrphan {
			attrs = append(attrs, "style=\"filled,dashed\"")
		}
		if n.Description != "" {
			attrs = append(attrs, "tooltip="+dotQuote(n.Description))
		}
	}
	return attrs
}

func fmtEdgeAttrs(e chart.Edge) []string {
	attrs := []string{fmt.Sprintf("color=%q", safeColor(e.Color))}
	if e.Kind == chart.EdgeCategoryTechnique {
		return append(attrs, "style=dashed")
	}
	return append(attrs, fmt.Sprintf("penwidth=%s", num(edgeWidth(e.Count))))
}

// edgeWidth grows with the number of evidence records behind a provider
// edge, capped at 4.
func edgeWidth(count int) float64 {
	if count <= 1 {
		return 1
	}
	return math.Min(1+0.5*float64(count-1), 4)
}

// dotEscaper escapes text for a DOT double-quoted string. Line breaks
// become DOT's own \n escape.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32})$`)

// safeColor passes through hex colours and colour names and replaces
// anything else with the neutral colour.
func safeColor(c string) string {
	if colorRe.MatchString(c) {
		return c
	}
	return chart.NeutralColor
}

// =============================================================================
// Graphviz
// =============================================================================

// RenderSVG renders DOT to SVG with Graphviz's neato engine, which honours
// pinned node positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
