package chart

import (
	"sort"
	"strings"
)

// ColorFunc resolves a display name to a color. An empty result means
// "no color known".
type ColorFunc func(name string) string

// PaletteColors returns a ColorFunc backed by a fixed palette.
//
// Lookup is an exact key match first, then a case-insensitive match. When
// several keys match case-insensitively the first in sorted key order wins,
// so the result never depends on map iteration order.
func PaletteColors(palette map[string]string) ColorFunc {
	keys := make([]string, 0, len(palette))
	for k := range palette {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(name string) string {
		if c, ok := palette[name]; ok && c != "" {
			return c
		}
		for _, k := range keys {
			if strings.EqualFold(k, name) && palette[k] != "" {
				return palette[k]
			}
		}
		return ""
	}
}

// resolve returns the first non-empty color, or NeutralColor.
func resolve(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return NeutralColor
}

func lookup(f ColorFunc, name string) string {
	if f == nil {
		return ""
	}
	return f(name)
}
