// Package sqlite keeps an audit log of exports. The annotation set itself
// is deliberately never persisted; only the fact that a document was
// produced, and its headline numbers, survive the process.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ExportRecord is one row of export history.
type ExportRecord struct {
	Timestamp   time.Time
	Branch      string
	Revision    string
	Files       int
	Annotations int
	OutputPath  string
}

// Store implements export-history persistence over SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the history database at path. Use ":memory:"
// in tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		branch TEXT NOT NULL,
		revision TEXT NOT NULL,
		files INTEGER NOT NULL,
		annotations INTEGER NOT NULL,
		output_path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_timestamp ON exports(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordExport appends one row of history.
func (s *Store) RecordExport(ctx context.Context, rec ExportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (timestamp, branch, revision, files, annotations, output_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Unix(), rec.Branch, rec.Revision, rec.Files, rec.Annotations, rec.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// ListExports returns the most recent rows, newest first.
func (s *Store) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, branch, revision, files, annotations, output_path
		 FROM exports ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var records []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var ts int64
		if err := rows.Scan(&ts, &rec.Branch, &rec.Revision, &rec.Files, &rec.Annotations, &rec.OutputPath); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
