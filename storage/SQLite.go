package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout formats creation times with a fixed width so that they
// sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is a Store backed by a SQLite database file
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a new SQLiteStore using the database at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates its tables if needed
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("init: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("init: could not open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: could not connect to database: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: could not create tables: %w", err)
	}

	s.db = db
	return nil
}

// SaveSweep stores a sweep, replacing any sweep with the same ID
func (s *SQLiteStore) SaveSweep(ctx context.Context, sweep SweepRecord) error {
	if err := validID(sweep); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saveSweep: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sweeps (id, created, mode, num_runs, seed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created = excluded.created,
			mode = excluded.mode,
			num_runs = excluded.num_runs,
			seed = excluded.seed
	`, sweep.ID, sweep.Created.UTC().Format(timeLayout), sweep.Mode,
		sweep.NumRuns, int64(sweep.Seed))
	if err != nil {
		return fmt.Errorf("saveSweep: could not save sweep %s: %w", sweep.ID,
			err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM layouts WHERE sweep_id = ?`, sweep.ID); err != nil {
		return fmt.Errorf("saveSweep: could not replace layouts: %w", err)
	}

	for i, l := range sweep.Layouts {
		rewards, err := json.Marshal(l.Rewards)
		if err != nil {
			return fmt.Errorf("saveSweep: could not encode rewards: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO layouts (sweep_id, position, layout, rewards, mean,
				std, min, max, mean_length, truncated, err)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sweep.ID, i, l.Layout, rewards, l.Mean, l.StdDev, l.Min, l.Max,
			l.MeanLength, l.Truncated, l.Err)
		if err != nil {
			return fmt.Errorf("saveSweep: could not save layout %s: %w",
				l.Layout, err)
		}
	}
	return tx.Commit()
}

// GetSweep returns the sweep with the given ID and whether it exists
func (s *SQLiteStore) GetSweep(ctx context.Context, id string) (SweepRecord,
	bool, error) {
	db, err := s.getDB()
	if err != nil {
		return SweepRecord{}, false, err
	}

	var (
		sweep   = SweepRecord{ID: id}
		created string
		seed    int64
	)
	err = db.QueryRowContext(ctx, `
		SELECT created, mode, num_runs, seed FROM sweeps WHERE id = ?
	`, id).Scan(&created, &sweep.Mode, &sweep.NumRuns, &seed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SweepRecord{}, false, nil
		}
		return SweepRecord{}, false, fmt.Errorf("getSweep: %w", err)
	}
	sweep.Seed = uint64(seed)
	if sweep.Created, err = time.Parse(timeLayout, created); err != nil {
		return SweepRecord{}, false, fmt.Errorf("getSweep: could not parse "+
			"creation time of sweep %s: %w", id, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT layout, rewards, mean, std, min, max, mean_length, truncated, err
		FROM layouts WHERE sweep_id = ? ORDER BY position
	`, id)
	if err != nil {
		return SweepRecord{}, false, fmt.Errorf("getSweep: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       LayoutRecord
			rewards []byte
		)
		if err := rows.Scan(&l.Layout, &rewards, &l.Mean, &l.StdDev, &l.Min,
			&l.Max, &l.MeanLength, &l.Truncated, &l.Err); err != nil {
			return SweepRecord{}, false, fmt.Errorf("getSweep: %w", err)
		}
		if err := json.Unmarshal(rewards, &l.Rewards); err != nil {
			return SweepRecord{}, false, fmt.Errorf("getSweep: could not "+
				"decode rewards of layout %s: %w", l.Layout, err)
		}
		sweep.Layouts = append(sweep.Layouts, l)
	}
	if err := rows.Err(); err != nil {
		return SweepRecord{}, false, fmt.Errorf("getSweep: %w", err)
	}
	return sweep, true, nil
}

// ListSweeps returns the IDs of all stored sweeps, oldest first
func (s *SQLiteStore) ListSweeps(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id FROM sweeps ORDER BY created, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listSweeps: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listSweeps: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sweeps (
			id TEXT PRIMARY KEY,
			created TEXT NOT NULL,
			mode TEXT NOT NULL,
			num_runs INTEGER NOT NULL,
			seed INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS layouts (
			sweep_id TEXT NOT NULL REFERENCES sweeps(id),
			position INTEGER NOT NULL,
			layout TEXT NOT NULL,
			rewards BLOB NOT NULL,
			mean REAL NOT NULL,
			std REAL NOT NULL,
			min REAL NOT NULL,
			max REAL NOT NULL,
			mean_length REAL NOT NULL,
			truncated INTEGER NOT NULL,
			err TEXT NOT NULL,
			PRIMARY KEY (sweep_id, position)
		);
	`)
	return err
}
