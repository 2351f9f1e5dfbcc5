// Package store persists batch history records in SQLite.
//
// The store is an append-only audit log: one row per batch invocation plus one
// row per item outcome. It is not a job queue; records are written once after
// a batch completes and never transition state.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytz/internal/pipeline"
	"github.com/desertthunder/ytz/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	total INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	reference TEXT NOT NULL,
	filename TEXT,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_batch_items_batch_id ON batch_items(batch_id);
`

// Batch is one recorded batch invocation.
type Batch struct {
	ID        string
	CreatedAt time.Time
	Total     int
	Succeeded int
	Failed    int
}

// Item is one recorded per-reference outcome.
type Item struct {
	Reference string
	Filename  string
	Error     string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and applies the schema.
//
// The path can be ":memory:" for an in-memory database.
func Open(path string, maxOpenConns, maxIdleConns int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordBatch writes one batch row plus one row per item, atomically.
//
// Returns the generated batch id.
func (s *Store) RecordBatch(outcome *pipeline.Outcome) (string, error) {
	id := shared.GenerateID()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO batches (id, created_at, total, succeeded, failed) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), outcome.Total(), len(outcome.Successes), len(outcome.Failures),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, res := range outcome.Successes {
		_, err = tx.Exec(
			`INSERT INTO batch_items (batch_id, reference, filename, error) VALUES (?, ?, ?, NULL)`,
			id, res.Reference, res.Filename,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert item: %w", err)
		}
	}
	for _, res := range outcome.Failures {
		_, err = tx.Exec(
			`INSERT INTO batch_items (batch_id, reference, filename, error) VALUES (?, ?, NULL, ?)`,
			id, res.Reference, res.Reason(),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch: %w", err)
	}
	return id, nil
}

// RecentBatches returns up to limit batches, newest first.
func (s *Store) RecentBatches(limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, total, succeeded, failed FROM batches ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.Total, &b.Succeeded, &b.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatch returns one batch row by id.
func (s *Store) GetBatch(id string) (Batch, error) {
	var b Batch
	err := s.db.QueryRow(
		`SELECT id, created_at, total, succeeded, failed FROM batches WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.CreatedAt, &b.Total, &b.Succeeded, &b.Failed)
	if err == sql.ErrNoRows {
		return Batch{}, fmt.Errorf("%w: batch %s not found", shared.ErrInvalidInput, id)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("failed to query batch: %w", err)
	}
	return b, nil
}

// BatchItems returns the per-item outcomes recorded for one batch.
func (s *Store) BatchItems(batchID string) ([]Item, error) {
	rows, err := s.db.Query(
		`SELECT reference, COALESCE(filename, ''), COALESCE(error, '') FROM batch_items WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Reference, &it.Filename, &it.Error); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
