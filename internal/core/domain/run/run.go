package run

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// RunID is a value object identifying one install batch.
type RunID struct {
	value string
}

// NewRunID creates a RunID with validation.
func NewRunID(value string) (RunID, error) {
	if value == "" {
		return RunID{}, fmt.Errorf("run ID cannot be empty")
	}
	return RunID{value: value}, nil
}

// GenerateRunID creates a new unique RunID.
func GenerateRunID() RunID {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return RunID{value: hex.EncodeToString(bytes)}
}

// Value returns the string value of the RunID.
func (id RunID) Value() string {
	return id.value
}

// String implements the Stringer interface.
func (id RunID) String() string {
	return id.value
}

// Outcome classifies a single install attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// State tracks the run lifecycle.
type State string

const (
	StateCreated  State = "created"
	StateActive   State = "active"
	StateFinished State = "finished"
)

// Attempt records one install attempt. Seq is the 1-based position in the
// selected entry list.
type Attempt struct {
	Seq         int           `json:"seq"`
	Plugin      string        `json:"plugin"`
	Category    string        `json:"category"`
	Marketplace string        `json:"marketplace,omitempty"`
	Outcome     Outcome       `json:"outcome"`
	Detail      string        `json:"detail,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Summary tallies attempt outcomes for a run.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Report is the immutable record of a finished (or in-flight) run.
type Report struct {
	RunID      RunID      `json:"run_id"`
	DryRun     bool       `json:"dry_run"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Attempts   []Attempt  `json:"attempts"`
	Summary    Summary    `json:"summary"`
}

// Run is the aggregate for one batch execution. Attempts are appended
// strictly in sequence while the run is active. The aggregate is owned by a
// single goroutine; the install loop is strictly sequential.
type Run struct {
	id         RunID
	dryRun     bool
	state      State
	startedAt  time.Time
	finishedAt *time.Time
	attempts   []Attempt
}

// NewRun creates a run in the created state.
func NewRun(dryRun bool) *Run {
	return &Run{
		id:     GenerateRunID(),
		dryRun: dryRun,
		state:  StateCreated,
	}
}

// ID returns the run identifier.
func (r *Run) ID() RunID {
	return r.id
}

// State returns the current lifecycle state.
func (r *Run) State() State {
	return r.state
}

// Begin transitions the run to active. Only a created run can begin.
func (r *Run) Begin() error {
	if r.state != StateCreated {
		return fmt.Errorf("cannot begin run in state %s", r.state)
	}
	r.state = StateActive
	r.startedAt = time.Now()
	return nil
}

// RecordAttempt appends the next attempt. The run must be active and the
// sequence number must follow the previous one.
func (r *Run) RecordAttempt(a Attempt) error {
	if r.state != StateActive {
		return fmt.Errorf("cannot record attempt on run in state %s", r.state)
	}
	if a.Seq != len(r.attempts)+1 {
		return fmt.Errorf("attempt out of sequence: got %d, want %d", a.Seq, len(r.attempts)+1)
	}
	switch a.Outcome {
	case OutcomeSuccess, OutcomeFailed, OutcomeSkipped:
	default:
		return fmt.Errorf("unknown outcome %q", a.Outcome)
	}
	r.attempts = append(r.attempts, a)
	return nil
}

// Finish transitions the run to finished. Idempotent calls are an error.
func (r *Run) Finish() error {
	if r.state != StateActive {
		return fmt.Errorf("cannot finish run in state %s", r.state)
	}
	now := time.Now()
	r.state = StateFinished
	r.finishedAt = &now
	return nil
}

// Summary tallies the recorded attempts.
func (r *Run) Summary() Summary {
	s := Summary{Total: len(r.attempts)}
	for _, a := range r.attempts {
		switch a.Outcome {
		case OutcomeSuccess:
			s.Succeeded++
		case OutcomeFailed:
			s.Failed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}

// Report snapshots the run. The attempt slice is copied so callers cannot
// mutate the aggregate.
func (r *Run) Report() Report {
	attempts := make([]Attempt, len(r.attempts))
	copy(attempts, r.attempts)

	return Report{
		RunID:      r.id,
		DryRun:     r.dryRun,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Attempts:   attempts,
		Summary:    r.Summary(),
	}
}
