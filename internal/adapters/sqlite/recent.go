// Package sqlite stores the recently opened recordings in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bft-labs/lectrec/internal/domain"
)

// DatabaseFile is the file name of the database inside the state directory.
const DatabaseFile = "recent.db"

const schema = `
CREATE TABLE IF NOT EXISTS recent_recordings (
	path        TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	opened_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS recent_recordings_opened_at ON recent_recordings (opened_at DESC);
`

// RecentRepository implements ports.RecentRepository.
type RecentRepository struct {
	db *sql.DB
}

// Open opens or creates the database at path. Use ":memory:" for a
// throw-away database.
func Open(path string) (*RecentRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("recent: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recent: open: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("recent: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recent: schema: %w", err)
	}
	return &RecentRepository{db: db}, nil
}

// Add inserts or replaces the entry for r.Path.
func (r *RecentRepository) Add(ctx context.Context, rec domain.RecentRecording) error {
	if rec.Path == "" {
		return errors.New("recent: empty path")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_recordings (path, id, duration_ms, opened_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id,
			duration_ms = excluded.duration_ms,
			opened_at = excluded.opened_at`,
		rec.Path, rec.ID.String(), rec.Duration, rec.OpenedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("recent: add %s: %w", rec.Path, err)
	}
	return nil
}

// List returns up to limit entries, most recently opened first.
// A limit <= 0 returns every entry.
func (r *RecentRepository) List(ctx context.Context, limit int) ([]domain.RecentRecording, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT path, id, duration_ms, opened_at
		FROM recent_recordings
		ORDER BY opened_at DESC, path
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent: list: %w", err)
	}
	defer rows.Close()

	var out []domain.RecentRecording
	for rows.Next() {
		var (
			rec      domain.RecentRecording
			id       string
			openedAt int64
		)
		if err := rows.Scan(&rec.Path, &id, &rec.Duration, &openedAt); err != nil {
			return nil, fmt.Errorf("recent: scan: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("recent: entry %s: %w", rec.Path, err)
		}
		rec.OpenedAt = time.UnixMilli(openedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Remove deletes the entry for path.
func (r *RecentRepository) Remove(ctx context.Context, path string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recent_recordings WHERE path = ?`, path); err != nil {
		return fmt.Errorf("recent: remove %s: %w", path, err)
	}
	return nil
}

// Prune keeps the keep most recently opened entries and deletes the rest.
func (r *RecentRepository) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM recent_recordings WHERE path NOT IN (
			SELECT path FROM recent_recordings ORDER BY opened_at DESC, path LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("recent: prune: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *RecentRepository) Close() error {
	return r.db.Close()
}
