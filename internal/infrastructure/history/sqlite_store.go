// Package history persists install run receipts in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"plugup.dev/cli/internal/core/domain/run"
	"plugup.dev/cli/internal/core/ports"
)

// SQLiteStore implements ports.HistoryStore on a single database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (or reuses) the history database at path.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// WAL keeps a crashed install run from corrupting earlier receipts.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		total INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS attempts (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		seq INTEGER NOT NULL,
		plugin TEXT NOT NULL,
		category TEXT NOT NULL,
		marketplace TEXT,
		outcome TEXT NOT NULL,
		detail TEXT,
		duration_ms INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_plugin ON attempts(plugin, recorded_at);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// RecordRun stores one report atomically.
func (s *SQLiteStore) RecordRun(report run.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	var finishedAt interface{}
	if report.FinishedAt != nil {
		finishedAt = report.FinishedAt.UTC()
	}

	_, err = tx.Exec(`INSERT INTO runs
		(run_id, dry_run, started_at, finished_at, total, succeeded, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID.Value(), report.DryRun, report.StartedAt.UTC(), finishedAt,
		report.Summary.Total, report.Summary.Succeeded, report.Summary.Failed, report.Summary.Skipped)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.RunID, err)
	}

	now := time.Now().UTC()
	for _, a := range report.Attempts {
		_, err = tx.Exec(`INSERT INTO attempts
			(run_id, seq, plugin, category, marketplace, outcome, detail, duration_ms, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID.Value(), a.Seq, a.Plugin, a.Category, a.Marketplace,
			string(a.Outcome), a.Detail, a.Duration.Milliseconds(), now)
		if err != nil {
			return fmt.Errorf("failed to record attempt %d of run %s: %w", a.Seq, report.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit run headers, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`SELECT run_id, dry_run, started_at, finished_at,
		total, succeeded, failed, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []ports.RunRecord
	for rows.Next() {
		var rec ports.RunRecord
		var finishedAt sql.NullTime
		if err := rows.Scan(&rec.RunID, &rec.DryRun, &rec.StartedAt, &finishedAt,
			&rec.Summary.Total, &rec.Summary.Succeeded, &rec.Summary.Failed, &rec.Summary.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if finishedAt.Valid {
			rec.FinishedAt = finishedAt.Time
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunAttempts returns the ordered attempts of one run.
func (s *SQLiteStore) RunAttempts(runID string) ([]run.Attempt, error) {
	rows, err := s.db.Query(`SELECT seq, plugin, category, marketplace, outcome, detail, duration_ms
		FROM attempts WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts for run %s: %w", runID, err)
	}
	defer rows.Close()

	var attempts []run.Attempt
	for rows.Next() {
		var a run.Attempt
		var marketplace, detail sql.NullString
		var durationMs int64
		if err := rows.Scan(&a.Seq, &a.Plugin, &a.Category, &marketplace, (*string)(&a.Outcome), &detail, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		a.Marketplace = marketplace.String
		a.Detail = detail.String
		a.Duration = time.Duration(durationMs) * time.Millisecond
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// PluginStatuses returns the latest recorded outcome per plugin name.
func (s *SQLiteStore) PluginStatuses() ([]ports.PluginStatus, error) {
	rows, err := s.db.Query(`SELECT plugin, category, outcome, detail, recorded_at FROM attempts a
		WHERE NOT EXISTS (
			SELECT 1 FROM attempts b
			WHERE b.plugin = a.plugin
			AND (b.recorded_at > a.recorded_at
				OR (b.recorded_at = a.recorded_at AND b.seq > a.seq))
		)
		ORDER BY plugin`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin statuses: %w", err)
	}
	defer rows.Close()

	var statuses []ports.PluginStatus
	for rows.Next() {
		var st ports.PluginStatus
		var detail sql.NullString
		if err := rows.Scan(&st.Plugin, &st.Category, (*string)(&st.Outcome), &detail, &st.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		st.Detail = detail.String
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
