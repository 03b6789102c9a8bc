// Package history keeps an audit log of report generation runs in a
// local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	slug        TEXT NOT NULL,
	language    TEXT NOT NULL,
	audience    TEXT NOT NULL,
	purpose     TEXT NOT NULL,
	succeeded   INTEGER NOT NULL,
	stage       TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	diagnostic  TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_report_runs_slug ON report_runs(slug);
CREATE INDEX IF NOT EXISTS idx_report_runs_created ON report_runs(created_at);
`

// Run is one report generation attempt. Stage is empty for successful
// runs; for failures it names the pipeline stage that failed.
type Run struct {
	ID         int64     `json:"id"`
	Slug       string    `json:"slug"`
	Language   string    `json:"language"`
	Audience   string    `json:"audience"`
	Purpose    string    `json:"purpose"`
	Succeeded  bool      `json:"succeeded"`
	Stage      string    `json:"stage,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Diagnostic string    `json:"diagnostic,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists report runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the history database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY under concurrent report runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a run to the log and returns it with ID and CreatedAt set.
func (s *Store) Record(ctx context.Context, run Run) (*Run, error) {
	run.CreatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO report_runs (slug, language, audience, purpose, succeeded, stage, summary, diagnostic, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Slug, run.Language, run.Audience, run.Purpose, run.Succeeded,
		run.Stage, run.Summary, run.Diagnostic, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("history: failed to record run: %w", err)
	}
	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("history: failed to read run id: %w", err)
	}
	return &run, nil
}

// List returns the most recent runs, newest first. slug filters to one
// mineral when non-empty; limit caps the result (default 50).
func (s *Store) List(ctx context.Context, slug string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, slug, language, audience, purpose, succeeded, stage, summary, diagnostic, duration_ms, created_at
		FROM report_runs`
	args := []interface{}{}
	if slug != "" {
		query += " WHERE slug = ?"
		args = append(args, slug)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Slug, &run.Language, &run.Audience, &run.Purpose,
			&run.Succeeded, &run.Stage, &run.Summary, &run.Diagnostic, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
