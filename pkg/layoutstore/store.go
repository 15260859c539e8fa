// Package layoutstore persists the user's arrangement of the network chart.
//
// A saved layout is a [layout.Record]: node positions, label anchors and the
// engine name, stamped with a revision and save time. Records live under a
// name (by default [DefaultName]) in any [cache.Cache] backend, so the CLI
// keeps them on disk while the HTTP API shares them through redis or mongo.
//
// # Usage
//
//	store := layoutstore.NewCacheStore(c, cache.NewDefaultKeyer())
//	out := layout.Reconcile(g, def, layoutstore.Loader(ctx, store, layoutstore.DefaultName, logger))
//
//	rec := out.Record()
//	if err := store.Save(ctx, layoutstore.DefaultName, rec); err != nil {
//	    return err
//	}
//
// The chart core never sees a store error: [Loader] logs failures and reports
// them as "nothing saved", which makes the reconciler fall back to the
// default layout.
package layoutstore

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
)

// DefaultName is the name the chart's layout is saved under.
const DefaultName = "unified-chart-layout"

// Store is the interface for saved layout backends.
type Store interface {
	// Load returns the record saved under name. A missing record is an
	// error with code ErrCodeLayoutNotFound.
	Load(ctx context.Context, name string) (*layout.Record, error)

	// Save stores rec under name, stamping its Revision and SavedAt.
	Save(ctx context.Context, name string, rec *layout.Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, name string) error
}

// Validate checks a record received from a client before it is saved.
// Positions may be non-finite (the reconciler rejects those per node), but
// every id must look like a node id and every anchor must be known.
func Validate(rec *layout.Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "layout record is required")
	}
	if rec.LayoutName != "" {
		if err := errors.ValidateLayoutName(rec.LayoutName); err != nil {
			return err
		}
	}
	for id := range rec.Positions {
		if err := errors.ValidateNodeID(id); err != nil {
			return err
		}
	}
	for id, a := range rec.LabelAnchors {
		if err := errors.ValidateNodeID(id); err != nil {
			return err
		}
		if !a.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "invalid label anchor %q for %s", a, id)
		}
	}
	return nil
}

// =============================================================================
// CacheStore
// =============================================================================

// CacheStore keeps records as JSON blobs in a cache backend. Records never
// expire.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
	now   func() time.Time
}

// NewCacheStore creates a store over c. A nil keyer uses cache.DefaultKeyer.
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: keyer, now: time.Now}
}

func (s *CacheStore) key(name string) (string, error) {
	if err := errors.ValidateStoreKey(name); err != nil {
		return "", err
	}
	return s.keyer.LayoutKey(name), nil
}

func (s *CacheStore) Load(ctx context.Context, name string) (*layout.Record, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load layout %s", name)
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "no saved layout %s", name)
	}
	var rec layout.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stored layout %s", name)
	}
	return &rec, nil
}

func (s *CacheStore) Save(ctx context.Context, name string, rec *layout.Record) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}
	if err := Validate(rec); err != nil {
		return err
	}
	rec.Revision = uuid.NewString()
	rec.SavedAt = s.now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout %s", name)
	}
	if err := s.cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save layout %s", name)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, name string) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "delete layout %s", name)
	}
	return nil
}

var _ Store = (*CacheStore)(nil)

// =============================================================================
// Reconciler adapter
// =============================================================================

// Loader adapts store into the reconciler's load attempt for name.
//
// A missing record is reported as absent. Any other failure is logged at
// warn level and also reported as absent, so a broken store only costs the
// user their saved arrangement, never the chart.
func Loader(ctx context.Context, store Store, name string, logger *log.Logger) layout.Loader {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return func() (*layout.Record, error) {
		if store == nil {
			return nil, nil
		}
		rec, err := store.Load(ctx, name)
		switch {
		case errors.Is(err, errors.ErrCodeLayoutNotFound):
			logger.Debug("no saved layout", "name", name)
			return nil, nil
		case err != nil:
			logger.Warn("saved layout unavailable, using default", "name", name, "error", err)
			return nil, err
		}
		logger.Debug("loaded saved layout", "name", name, "revision", rec.Revision, "positions", len(rec.Positions))
		return rec, nil
	}
}
