// Package history keeps a local record of finished and failed downloads in a
// SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	output_path TEXT NOT NULL DEFAULT '',
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	elapsed_ms  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
`

// Entry is one recorded download.
type Entry struct {
	ID         int64
	Source     string
	OutputPath string
	SizeBytes  int64
	Elapsed    time.Duration
	Status     string
	Error      string
	CreatedAt  time.Time
}

// Store wraps the history database. Safe for concurrent use; database/sql
// serializes access to the single-writer SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCompleted stores a successful download.
func (s *Store) RecordCompleted(source, outputPath string, sizeBytes int64, elapsed time.Duration) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (source, output_path, size_bytes, elapsed_ms, status) VALUES (?, ?, ?, ?, 'completed')`,
		source, outputPath, sizeBytes, elapsed.Milliseconds(),
	)
	return err
}

// RecordFailed stores a failed download together with its reason.
func (s *Store) RecordFailed(source, reason string) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (source, status, error) VALUES (?, 'failed', ?)`,
		source, reason,
	)
	return err
}

// List returns the most recent entries, newest first, up to limit.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, source, output_path, size_bytes, elapsed_ms, status, error, created_at
		 FROM downloads ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var elapsedMS int64
		if err := rows.Scan(&e.ID, &e.Source, &e.OutputPath, &e.SizeBytes, &elapsedMS, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM downloads`)
	return err
}
