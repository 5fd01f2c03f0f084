package ports

import (
	"time"

	"plugup.dev/cli/internal/core/domain/run"
)

// RunRecord is a stored run header with its summary.
type RunRecord struct {
	RunID      string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    run.Summary
}

// PluginStatus is the latest recorded outcome for one plugin name.
type PluginStatus struct {
	Plugin     string
	Category   string
	Outcome    run.Outcome
	Detail     string
	RecordedAt time.Time
}

// HistoryStore persists install run receipts. Implementations must never be
// load-bearing for the install loop: recording failures are reported to the
// caller, who warns and continues.
type HistoryStore interface {
	RecordRun(report run.Report) error
	RecentRuns(limit int) ([]RunRecord, error)
	RunAttempts(runID string) ([]run.Attempt, error)
	PluginStatuses() ([]PluginStatus, error)
	Close() error
}
