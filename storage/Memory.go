package storage

import (
	"context"
	"sync"
)

// MemoryStore is a Store that keeps sweeps in memory
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	sweeps      map[string]SweepRecord
	order       []string
}

// NewMemoryStore returns a new MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init initializes the store, removing all stored sweeps
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.sweeps = make(map[string]SweepRecord)
	s.order = nil
	return nil
}

// SaveSweep stores a sweep, replacing any sweep with the same ID
func (s *MemoryStore) SaveSweep(_ context.Context, sweep SweepRecord) error {
	if err := validID(sweep); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := s.sweeps[sweep.ID]; !ok {
		s.order = append(s.order, sweep.ID)
	}
	s.sweeps[sweep.ID] = copySweep(sweep)
	return nil
}

// GetSweep returns the sweep with the given ID and whether it exists
func (s *MemoryStore) GetSweep(_ context.Context, id string) (SweepRecord,
	bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return SweepRecord{}, false, ErrNotInitialized
	}
	sweep, ok := s.sweeps[id]
	if !ok {
		return SweepRecord{}, false, nil
	}
	return copySweep(sweep), true, nil
}

// ListSweeps returns the IDs of all stored sweeps in the order they
// were first saved
func (s *MemoryStore) ListSweeps(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return append([]string(nil), s.order...), nil
}

// copySweep deep-copies a sweep so that stored sweeps cannot be
// modified by callers
func copySweep(sweep SweepRecord) SweepRecord {
	layouts := make([]LayoutRecord, len(sweep.Layouts))
	for i, l := range sweep.Layouts {
		l.Rewards = append([]float64(nil), l.Rewards...)
		layouts[i] = l
	}
	sweep.Layouts = layouts
	return sweep
}
