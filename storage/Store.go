// Package storage persists the results of evaluation sweeps
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samuelfneumann/layouteval/experiment"
)

// Store backends
const (
	Memory = "memory"
	SQLite = "sqlite"
)

// ErrNotInitialized reports that a Store was used before Init was
// called
var ErrNotInitialized = errors.New("store is not initialized")

// LayoutRecord is the persisted result of evaluating a single layout
type LayoutRecord struct {
	Layout     string
	Rewards    []float64
	Mean       float64
	StdDev     float64
	Min        float64
	Max        float64
	MeanLength float64
	Truncated  int

	// Err holds the error message of a failed layout
	Err string
}

// SweepRecord is the persisted result of an evaluation sweep
type SweepRecord struct {
	ID      string
	Created time.Time
	Mode    string
	NumRuns int
	Seed    uint64
	Layouts []LayoutRecord
}

// Store persists SweepRecords
type Store interface {
	Init(ctx context.Context) error
	SaveSweep(ctx context.Context, sweep SweepRecord) error
	GetSweep(ctx context.Context, id string) (SweepRecord, bool, error)

	// ListSweeps returns the IDs of all stored sweeps, oldest first
	ListSweeps(ctx context.Context) ([]string, error)
}

// NewSweepID returns a new unique sweep ID
func NewSweepID() string {
	return uuid.NewString()
}

// NewSweepRecord creates a SweepRecord with a new ID from the results
// of a sweep
func NewSweepRecord(c experiment.Config,
	results []experiment.LayoutResult) SweepRecord {
	record := SweepRecord{
		ID:      NewSweepID(),
		Created: time.Now().UTC(),
		Mode:    c.Mode.String(),
		NumRuns: c.NumRuns,
		Seed:    c.Seed,
		Layouts: make([]LayoutRecord, len(results)),
	}

	for i, r := range results {
		layout := LayoutRecord{Layout: r.Layout}
		if r.Err != nil {
			layout.Err = r.Err.Error()
		}
		if res := r.Result; res != nil {
			layout.Rewards = append([]float64(nil), res.Rewards...)
			layout.Mean = res.Mean
			layout.StdDev = res.StdDev
			layout.Min = res.Min
			layout.Max = res.Max
			layout.MeanLength = res.MeanLength
			layout.Truncated = res.Truncated
		}
		record.Layouts[i] = layout
	}
	return record
}

// NewStore returns a new, uninitialized Store of the given kind. The
// path is only used by the SQLite backend.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", Memory:
		return NewMemoryStore(), nil
	case SQLite:
		if path == "" {
			return nil, fmt.Errorf("newStore: sqlite path is required")
		}
		return NewSQLiteStore(path), nil
	}
	return nil, fmt.Errorf("newStore: unsupported store backend %q", kind)
}

// Close closes a Store if it needs to be closed
func Close(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// validID returns an error if a sweep record cannot be stored
func validID(sweep SweepRecord) error {
	if sweep.ID == "" {
		return fmt.Errorf("sweep ID is required")
	}
	return nil
}
