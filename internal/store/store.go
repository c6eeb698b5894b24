// Package store is the durable local persistence layer: named option
// presets and the rate-limiter usage log. Session state (history, gallery,
// selection) is deliberately not persisted.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS presets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    aspect_ratio TEXT NOT NULL,
    custom_ratio REAL NOT NULL DEFAULT 0,
    resolution TEXT NOT NULL,
    style TEXT,
    model TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS usage_log (
    stamp_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name);
CREATE INDEX IF NOT EXISTS idx_usage_log_stamp ON usage_log(stamp_ms);
`

type Store struct {
	db *sql.DB
}

func New() (*Store, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return NewWithPath(dbPath)
}

func NewWithPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func defaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".imgstudio", "studio.db"), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadTimestamps returns the persisted usage log oldest-first. Implements
// ratelimit.Log.
func (s *Store) LoadTimestamps(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stamp_ms FROM usage_log ORDER BY stamp_ms ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		stamps = append(stamps, time.UnixMilli(ms))
	}
	return stamps, rows.Err()
}

// SaveTimestamps replaces the persisted usage log atomically.
func (s *Store) SaveTimestamps(ctx context.Context, stamps []time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_log`); err != nil {
		return err
	}
	for _, t := range stamps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO usage_log (stamp_ms) VALUES (?)`, t.UnixMilli()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
