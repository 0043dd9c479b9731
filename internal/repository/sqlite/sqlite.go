package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hepevd/internal/domain"
	"hepevd/internal/repository"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrNotFound is returned when no event has the requested id
var ErrNotFound = repository.ErrNotFound

var _ repository.EventStore = (*Repository)(nil)

// Repository implements repository.EventStore using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. ":memory:" gives a private in-memory
// database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT,
		source TEXT,
		hits INTEGER NOT NULL DEFAULT 0,
		mc_hits INTEGER NOT NULL DEFAULT 0,
		markers INTEGER NOT NULL DEFAULT 0,
		particles INTEGER NOT NULL DEFAULT 0,
		volumes INTEGER NOT NULL DEFAULT 0,
		data JSON NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_updated ON events(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveEvent stores an event under its fingerprint
func (r *Repository) SaveEvent(ctx context.Context, event *domain.Event, source string) (*domain.EventRecord, error) {
	id, err := event.Fingerprint()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	s := event.Summarize()
	now := formatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (id, name, source, hits, mc_hits, markers, particles, volumes, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, id, stringToNull(event.Name), stringToNull(source),
		s.Hits, s.MCHits, s.Markers, s.Particles, s.Volumes, data, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	return r.GetRecord(ctx, id)
}

const recordColumns = `id, name, source, hits, mc_hits, markers, particles, volumes, created_at, updated_at`

// GetRecord returns the metadata of one event
func (r *Repository) GetRecord(ctx context.Context, id string) (*domain.EventRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM events WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return rec, nil
}

// GetEvent loads and decodes one event
func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM events WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return decodeEvent(data)
}

// ListEvents returns every stored event, most recently updated first
func (r *Repository) ListEvents(ctx context.Context) ([]domain.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM events ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EventRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// LatestEvent returns the most recently saved event
func (r *Repository) LatestEvent(ctx context.Context) (*domain.Event, *domain.EventRecord, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM events ORDER BY updated_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query latest event: %w", err)
	}

	event, err := r.GetEvent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rec, err := r.GetRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return event, rec, nil
}

// DeleteEvent removes an event
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
