package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/observability"
)

// =============================================================================
// Saved layout operations
// =============================================================================

// Settle releases the free nodes to the force simulation, keeps every other
// node pinned, and saves the settled layout.
//
// The starting point is the reconciled layout, optionally overlaid with
// current (for example the positions a user is dragging in a browser). The
// simulation stops when it cools, after the configured tick budget, or when
// ctx is done; a cancelled settle is not saved.
func (r *Runner) Settle(ctx context.Context, g *chart.Graph, current *layout.Record, free []string, opts Options) (layout.Reconciled, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Reconciled{}, err
	}
	if len(free) == 0 {
		return layout.Reconciled{}, errors.New(errors.ErrCodeInvalidInput, "no nodes to settle")
	}
	for _, id := range free {
		if err := errors.ValidateNodeID(id); err != nil {
			return layout.Reconciled{}, err
		}
		if !g.Has(id) {
			return layout.Reconciled{}, errors.New(errors.ErrCodeInvalidNodeID, "unknown node %q", id)
		}
	}

	def, base, err := r.Layout(ctx, g, opts)
	if err != nil {
		return layout.Reconciled{}, err
	}
	if current != nil {
		prev := layout.Result{
			Name:      base.LayoutName,
			Positions: base.Positions,
			Anchors:   base.Anchors,
			Width:     opts.Width,
			Height:    opts.Height,
		}
		base = layout.Reconcile(g, prev, func() (*layout.Record, error) { return current, nil })
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, layout.NameForce, len(free))
	start := time.Now()
	positions, err := layout.Settle(ctx, g, base.Positions, free, opts.LayoutConfig())
	hooks.OnLayoutComplete(ctx, layout.NameForce, time.Since(start), err)
	if err != nil {
		return layout.Reconciled{}, errors.Wrap(errors.ErrCodeTimeout, err, "settle interrupted")
	}

	base.Positions = positions
	rec := base.Record()
	if err := r.Store.Save(ctx, opts.StoreKey, rec); err != nil {
		return layout.Reconciled{}, err
	}
	opts.Logger.Info("settled layout", "free", len(free), "duration", time.Since(start))

	// Report the saved record the way a later Layout call would see it.
	return layout.Reconcile(g, def, func() (*layout.Record, error) { return rec, nil }), nil
}

// SaveLayout stores rec under opts.StoreKey and returns the layout g is
// now drawn with.
func (r *Runner) SaveLayout(ctx context.Context, g *chart.Graph, rec *layout.Record, opts Options) (layout.Reconciled, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Reconciled{}, err
	}
	if err := r.Store.Save(ctx, opts.StoreKey, rec); err != nil {
		return layout.Reconciled{}, err
	}
	opts.Logger.Info("saved layout", "key", opts.StoreKey, "revision", rec.Revision, "positions", len(rec.Positions))

	_, rl, err := r.Layout(ctx, g, opts)
	return rl, err
}

// ResetLayout deletes the saved layout so the default is used again.
func (r *Runner) ResetLayout(ctx context.Context, opts Options) error {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	if err := r.Store.Delete(ctx, opts.StoreKey); err != nil {
		return err
	}
	opts.Logger.Info("reset layout", "key", opts.StoreKey)
	return nil
}
