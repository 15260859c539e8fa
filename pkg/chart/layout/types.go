package layout

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
)

// Layout names.
const (
	NameBalanced   = "balanced"
	NameSequential = "sequential"
	NameForce      = "force"
)

// Names lists the available engines, default first.
func Names() []string {
	return []string{NameBalanced, NameSequential, NameForce}
}

// ValidName reports whether name is a known engine.
func ValidName(name string) bool {
	switch name {
	case NameBalanced, NameSequential, NameForce:
		return true
	}
	return false
}

// =============================================================================
// Point
// =============================================================================

// Point is a node coordinate.
//
// Decoding is lenient: a coordinate that is missing, null or not a number
// decodes as NaN instead of failing, so one corrupt entry in a persisted
// layout does not discard the rest. Non-finite coordinates encode as null.
type Point struct {
	X float64
	Y float64
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

type wirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// MarshalJSON encodes {"x":..,"y":..}.
func (p Point) MarshalJSON() ([]byte, error) {
	finite := func(v float64) *float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	}
	return json.Marshal(wirePoint{X: finite(p.X), Y: finite(p.Y)})
}

// UnmarshalJSON decodes leniently; it never returns an error.
func (p *Point) UnmarshalJSON(data []byte) error {
	p.X, p.Y = math.NaN(), math.NaN()
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	p.X = coordinate(raw["x"])
	p.Y = coordinate(raw["y"])
	return nil
}

func coordinate(raw json.RawMessage) float64 {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	return v
}

// Positions maps node ids to coordinates.
type Positions map[string]Point

// Clone returns a copy of p.
func (p Positions) Clone() Positions { return maps.Clone(p) }

// =============================================================================
// Anchor
// =============================================================================

// Anchor is the text-anchor hint for a node label.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Valid reports whether a is one of start, middle or end.
func (a Anchor) Valid() bool {
	return a == AnchorStart || a == AnchorMiddle || a == AnchorEnd
}

// Anchors maps node ids to label anchors.
type Anchors map[string]Anchor

// Clone returns a copy of a.
func (a Anchors) Clone() Anchors { return maps.Clone(a) }

// =============================================================================
// Result
// =============================================================================

// Result is the output of a layout engine.
type Result struct {
	Name      string    `json:"layoutName"`
	Positions Positions `json:"positions"`
	Anchors   Anchors   `json:"labelAnchors"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
}

func newResult(name string, cfg Config, n int) *Result {
	return &Result{
		Name:      name,
		Positions: make(Positions, n),
		Anchors:   make(Anchors, n),
		Width:     cfg.Width,
		Height:    cfg.Height,
	}
}

func (r *Result) set(id string, x, y float64, a Anchor) {
	r.Positions[id] = Point{X: x, Y: y}
	r.Anchors[id] = a
}
