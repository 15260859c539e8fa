package chart

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextMeasurer reports the rendered width of a label in pixels.
type TextMeasurer interface {
	Measure(text string) float64
}

// MeasureFunc adapts a function to TextMeasurer.
type MeasureFunc func(text string) float64

// Measure calls f.
func (f MeasureFunc) Measure(text string) float64 { return f(text) }

// FaceMeasurer measures text against a font face.
type FaceMeasurer struct {
	Face font.Face
}

// Measure returns the advance width of text.
func (m FaceMeasurer) Measure(text string) float64 {
	adv := font.MeasureString(m.Face, text)
	return float64(adv) / 64
}

// DefaultMeasurer uses the 7x13 bitmap face, which is close to the width of
// the 12px sans-serif labels the chart is drawn with.
var DefaultMeasurer TextMeasurer = FaceMeasurer{Face: basicfont.Face7x13}
