package layoutstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
)

// MemoryStore is an in-process store for development and tests. Records are
// copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*layout.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*layout.Record)}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*layout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "no saved layout %s", name)
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, rec *layout.Record) error {
	if err := errors.ValidateStoreKey(name); err != nil {
		return err
	}
	if err := Validate(rec); err != nil {
		return err
	}
	rec.Revision = uuid.NewString()
	rec.SavedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[name] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func cloneRecord(rec *layout.Record) *layout.Record {
	c := *rec
	c.Positions = rec.Positions.Clone()
	c.LabelAnchors = rec.LabelAnchors.Clone()
	return &c
}

var _ Store = (*MemoryStore)(nil)
