// Package store persists instance LRU metadata and generation history in
// SQLite so warm-start ordering and history survive restarts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"chatmodeld/pkg/types"
)

// Store wraps a single-connection SQLite database. modernc.org/sqlite is
// pure Go; one connection sidesteps writer lock contention.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty store path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS instance_lru (
		model_id       TEXT PRIMARY KEY,
		last_used_unix INTEGER NOT NULL DEFAULT 0,
		est_mem_mb     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS generations (
		id            TEXT PRIMARY KEY,
		model_id      TEXT NOT NULL,
		runtime       TEXT NOT NULL,
		prompt_chars  INTEGER NOT NULL DEFAULT 0,
		output_chars  INTEGER NOT NULL DEFAULT 0,
		duration_ms   INTEGER NOT NULL DEFAULT 0,
		finish_reason TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS generations_created_at ON generations(created_at)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LRURecord mirrors one instance_lru row.
type LRURecord struct {
	ModelID  string
	LastUsed time.Time
	EstMemMB int
}

// TouchInstance upserts the LRU row for a model.
func (s *Store) TouchInstance(ctx context.Context, modelID string, lastUsed time.Time, estMemMB int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO instance_lru (model_id, last_used_unix, est_mem_mb) VALUES (?, ?, ?)
		ON CONFLICT(model_id) DO UPDATE SET
			last_used_unix = excluded.last_used_unix,
			est_mem_mb     = excluded.est_mem_mb`,
		modelID, lastUsed.Unix(), estMemMB)
	return err
}

// ForgetInstance removes the LRU row for a model. Missing rows are fine.
func (s *Store) ForgetInstance(ctx context.Context, modelID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM instance_lru WHERE model_id = ?`, modelID)
	return err
}

// LoadLRU returns all persisted LRU rows keyed by model ID.
func (s *Store) LoadLRU(ctx context.Context) (map[string]LRURecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model_id, last_used_unix, est_mem_mb FROM instance_lru`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]LRURecord)
	for rows.Next() {
		var rec LRURecord
		var unix int64
		if err := rows.Scan(&rec.ModelID, &unix, &rec.EstMemMB); err != nil {
			return nil, err
		}
		rec.LastUsed = time.Unix(unix, 0)
		out[rec.ModelID] = rec
	}
	return out, rows.Err()
}

// RecordGeneration appends one generation row.
func (s *Store) RecordGeneration(ctx context.Context, rec types.GenerationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (id, model_id, runtime, prompt_chars, output_chars, duration_ms, finish_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ModelID, string(rec.Runtime), rec.PromptChars, rec.OutputChars, rec.DurationMS, rec.FinishReason, rec.CreatedAtUnix)
	return err
}

// RecentGenerations returns up to limit rows, newest first.
func (s *Store) RecentGenerations(ctx context.Context, limit int) ([]types.GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, runtime, prompt_chars, output_chars, duration_ms, finish_reason, created_at
		FROM generations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.GenerationRecord
	for rows.Next() {
		var rec types.GenerationRecord
		var rt string
		if err := rows.Scan(&rec.ID, &rec.ModelID, &rt, &rec.PromptChars, &rec.OutputChars, &rec.DurationMS, &rec.FinishReason, &rec.CreatedAtUnix); err != nil {
			return nil, err
		}
		rec.Runtime = types.Runtime(rt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
