package force

import (
	"math"

	"github.com/matzehuels/safetymap/pkg/chart"
)

// Config holds the simulation constants.
type Config struct {
	Alpha         float64 // starting temperature
	AlphaMin      float64 // Run stops once alpha falls below this
	AlphaDecay    float64 // per-tick cooling rate
	AlphaTarget   float64
	VelocityDecay float64 // fraction of velocity lost per tick

	ProviderLinkDistance float64
	ProviderLinkStrength float64
	CategoryLinkDistance float64
	CategoryLinkStrength float64

	ProviderCharge  float64
	CategoryCharge  float64
	TechniqueCharge float64

	ProviderRadius  float64
	CategoryRadius  float64
	TechniqueRadius float64
	CollideStrength float64

	Seed uint64
}

// DefaultConfig returns the constants the chart is tuned for. AlphaDecay
// cools from 1 to AlphaMin in 300 ticks.
func DefaultConfig() Config {
	alphaMin := 0.001
	return Config{
		Alpha:         1,
		AlphaMin:      alphaMin,
		AlphaDecay:    1 - math.Pow(alphaMin, 1.0/300),
		VelocityDecay: 0.4,

		ProviderLinkDistance: 160,
		ProviderLinkStrength: 0.15,
		CategoryLinkDistance: 70,
		CategoryLinkStrength: 0.8,

		ProviderCharge:  -260,
		CategoryCharge:  -200,
		TechniqueCharge: -60,

		ProviderRadius:  28,
		CategoryRadius:  40,
		TechniqueRadius: 14,
		CollideStrength: 0.7,

		Seed: 42,
	}
}

func (c Config) charge(kind chart.NodeKind) float64 {
	switch kind {
	case chart.KindProvider:
		return c.ProviderCharge
	case chart.KindCategory:
		return c.CategoryCharge
	default:
		return c.TechniqueCharge
	}
}

func (c Config) radius(kind chart.NodeKind) float64 {
	switch kind {
	case chart.KindProvider:
		return c.ProviderRadius
	case chart.KindCategory:
		return c.CategoryRadius
	default:
		return c.TechniqueRadius
	}
}

func (c Config) link(kind chart.EdgeKind) (distance, strength float64) {
	if kind == chart.EdgeProviderTechnique {
		return c.ProviderLinkDistance, c.ProviderLinkStrength
	}
	return c.CategoryLinkDistance, c.CategoryLinkStrength
}
