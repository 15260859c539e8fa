package layout

import (
	"context"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/errors"
)

// Compute runs the engine called name. An empty name selects Balanced.
func Compute(ctx context.Context, name string, g *chart.Graph, cfg Config) (Result, error) {
	switch name {
	case "", NameBalanced:
		return Balanced(g, cfg), nil
	case NameSequential:
		return Sequential(g, cfg), nil
	case NameForce:
		return Force(ctx, g, cfg)
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q", name)
	}
}
