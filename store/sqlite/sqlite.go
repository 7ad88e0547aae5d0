// Package sqlite stores filter snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/store"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store implements store.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the schema when needed.
func New(db *sql.DB) (*Store, error) {
	if err := initSchema(db); err != nil {
		return nil, errors.Wrap(err, "failed to init schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS filter_snapshots (
			id TEXT PRIMARY KEY,
			view TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_filter_snapshots_view ON filter_snapshots(view, created_at DESC);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, view string, snap panelsearch.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal snapshot")
	}

	now := s.now()
	id := store.NewID(now)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO filter_snapshots (id, view, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, id, view, string(payload), now.UnixNano())
	if err != nil {
		return "", errors.Wrap(err, "failed to insert snapshot")
	}
	return id, nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, view, id string) (*store.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, view, payload, created_at
		FROM filter_snapshots
		WHERE view = ? AND id = ?
	`, view, id)
	return scanEntry(row)
}

// Latest implements store.Store.
func (s *Store) Latest(ctx context.Context, view string) (*store.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, view, payload, created_at
		FROM filter_snapshots
		WHERE view = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, view)
	return scanEntry(row)
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, view string) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, view, payload, created_at
		FROM filter_snapshots
		WHERE view = ?
		ORDER BY created_at DESC, id DESC
	`, view)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	return entries, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, view, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM filter_snapshots WHERE view = ? AND id = ?`, view, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete snapshot")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*store.Entry, error) {
	var (
		e       store.Entry
		payload string
		created int64
	)
	if err := row.Scan(&e.ID, &e.View, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, panelsearch.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	if err := json.Unmarshal([]byte(payload), &e.Snapshot); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(0, created)
	return &e, nil
}
