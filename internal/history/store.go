// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of export runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

const defaultListLimit = 20

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			slides INTEGER NOT NULL DEFAULT 0,
			charts_ready INTEGER NOT NULL DEFAULT 0,
			mode TEXT,
			output TEXT,
			bytes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run. An empty ID is replaced by a new UUID, which is returned.
func (s *Store) Record(ctx context.Context, run types.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}
	charts := 0
	if run.ChartsReady {
		charts = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, slides, charts_ready, mode, output, bytes, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		finished,
		run.Slides,
		charts,
		string(run.Mode),
		run.Output,
		run.Bytes,
		string(run.Status),
		run.Error,
	)
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// List returns the most recent runs first. A non-positive limit uses the default.
func (s *Store) List(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, slides, charts_ready, mode, output, bytes, status, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r                 types.Run
			started           string
			finished          sql.NullString
			charts            int
			mode, status      string
			output, errorText sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Slides, &charts, &mode, &output, &r.Bytes, &status, &errorText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing start time of run %s: %w", r.ID, err)
		}
		if finished.Valid {
			if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
				return nil, fmt.Errorf("parsing finish time of run %s: %w", r.ID, err)
			}
		}
		r.ChartsReady = charts == 1
		r.Mode = types.ExportMode(mode)
		r.Status = types.RunStatus(status)
		r.Output = output.String
		r.Error = errorText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
