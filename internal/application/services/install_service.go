package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"plugup.dev/cli/internal/core/domain/catalog"
	"plugup.dev/cli/internal/core/domain/process"
	"plugup.dev/cli/internal/core/domain/run"
	"plugup.dev/cli/internal/core/ports"
	"plugup.dev/cli/internal/infrastructure/runlog"
)

// ErrPluginsFailed is returned in strict mode when at least one plugin
// failed to install. The batch still ran to completion.
var ErrPluginsFailed = errors.New("one or more plugins failed to install")

// InstallRequest selects and shapes one install run.
type InstallRequest struct {
	Catalog catalog.Catalog

	// Selection is the ordered entry list to install. Nil means every
	// catalog entry.
	Selection []catalog.Plugin

	DryRun        bool
	SkipPreflight bool
	Strict        bool
}

// InstallService drives install runs: a fail-fast preflight followed by the
// never-fail install loop.
type InstallService struct {
	driver   ports.AgentDriver
	executor ports.Executor
	history  ports.HistoryStore
	log      *runlog.Logger
	console  io.Writer

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// NewInstallService wires the service. history may be nil (recording
// disabled); log may be nil.
func NewInstallService(driver ports.AgentDriver, executor ports.Executor, history ports.HistoryStore, log *runlog.Logger, console io.Writer) *InstallService {
	return &InstallService{
		driver:   driver,
		executor: executor,
		history:  history,
		log:      log,
		console:  console,
		lookPath: exec.LookPath,
	}
}

// Run executes one install batch.
//
// Preflight failures abort before any install attempt and surface as the
// returned error. Per-plugin failures never do: every selected entry is
// attempted exactly once, in order, and the error is nil unless strict mode
// is on and something failed.
func (s *InstallService) Run(ctx context.Context, req InstallRequest) (run.Report, error) {
	entries := req.Selection
	if entries == nil {
		entries = req.Catalog.Plugins()
	}

	r := run.NewRun(req.DryRun)
	if err := r.Begin(); err != nil {
		return run.Report{}, err
	}
	s.log.Printf("run %s started: %d entries, dry_run=%t", r.ID(), len(entries), req.DryRun)

	if !req.SkipPreflight && !req.DryRun {
		if err := s.preflight(ctx, req.Catalog); err != nil {
			s.log.Printf("run %s aborted in preflight: %v", r.ID(), err)
			return run.Report{}, fmt.Errorf("preflight failed: %w", err)
		}
	}

	s.installLoop(ctx, r, entries, req.DryRun)

	if err := r.Finish(); err != nil {
		return run.Report{}, err
	}

	report := r.Report()
	s.narrateSummary(report)
	s.persist(report)

	if req.Strict && report.Summary.Failed > 0 {
		return report, ErrPluginsFailed
	}
	return report, nil
}

// preflight runs under fail-fast semantics: the first failure aborts the
// whole command before any install attempt is made.
func (s *InstallService) preflight(ctx context.Context, cat catalog.Catalog) error {
	binary := s.driver.Binary()
	if _, err := s.lookPath(binary); err != nil {
		return fmt.Errorf("agent binary %q not found: %w", binary, err)
	}

	for _, pre := range cat.Prerequisites {
		fmt.Fprintf(s.console, "Running prerequisite %s...\n", pre.Name)
		if err := s.runPrerequisite(ctx, pre); err != nil {
			return fmt.Errorf("prerequisite %s failed: %w", pre.Name, err)
		}
	}

	for _, m := range cat.Marketplaces {
		fmt.Fprintf(s.console, "Registering marketplace %s...\n", m.Name)
		if err := s.driver.AddMarketplace(ctx, m.Source); err != nil {
			return fmt.Errorf("marketplace %s: %w", m.Name, err)
		}
		s.log.Printf("marketplace %s registered from %s", m.Name, m.Source)
	}

	return nil
}

func (s *InstallService) runPrerequisite(ctx context.Context, pre catalog.Prerequisite) error {
	cmd, err := process.NewCommand(pre.Command[0], pre.Command[1:])
	if err != nil {
		return err
	}
	if _, err := s.executor.Run(ctx, cmd); err != nil {
		return err
	}
	return nil
}

// installLoop attempts every entry exactly once, in list order. A failure
// for entry i is reduced to one warning line and never prevents entries
// i+1..N. Context cancellation is the only early exit; remaining entries are
// recorded as skipped.
func (s *InstallService) installLoop(ctx context.Context, r *run.Run, entries []catalog.Plugin, dryRun bool) {
	total := len(entries)
	canceled := false

	for i, p := range entries {
		seq := i + 1
		attempt := run.Attempt{
			Seq:         seq,
			Plugin:      p.Name,
			Category:    p.Category,
			Marketplace: p.Marketplace,
		}

		if canceled || ctx.Err() != nil {
			canceled = true
			attempt.Outcome = run.OutcomeSkipped
			attempt.Detail = "canceled"
			s.record(r, attempt)
			continue
		}

		fmt.Fprintf(s.console, "[%d/%d] Installing %s...\n", seq, total, p.Name)

		if dryRun {
			attempt.Outcome = run.OutcomeSkipped
			attempt.Detail = "dry run"
			s.record(r, attempt)
			s.log.Printf("attempt %d/%d %s: skipped (dry run)", seq, total, p.Ref())
			continue
		}

		start := time.Now()
		err := s.driver.InstallPlugin(ctx, p.Name, p.Marketplace)
		attempt.Duration = time.Since(start)

		if err != nil {
			attempt.Outcome = run.OutcomeFailed
			attempt.Detail = err.Error()
			fmt.Fprintf(s.console, "⚠️  Failed to install %s: %v\n", p.Name, err)
			s.log.Printf("attempt %d/%d %s: failed: %v", seq, total, p.Ref(), err)
		} else {
			attempt.Outcome = run.OutcomeSuccess
			s.log.Printf("attempt %d/%d %s: success", seq, total, p.Ref())
		}
		s.record(r, attempt)
	}
}

// record appends an attempt. The aggregate only rejects programming errors
// (out-of-sequence writes), which must not silently disappear mid-run.
func (s *InstallService) record(r *run.Run, attempt run.Attempt) {
	if err := r.RecordAttempt(attempt); err != nil {
		s.log.Printf("failed to record attempt %d: %v", attempt.Seq, err)
	}
}

func (s *InstallService) narrateSummary(report run.Report) {
	sum := report.Summary
	switch {
	case report.DryRun:
		fmt.Fprintf(s.console, "\nDry run complete: %d plugins would be installed\n", sum.Total)
	case sum.Failed == 0 && sum.Skipped == 0:
		fmt.Fprintf(s.console, "\n🎉 Successfully installed %d/%d plugins\n", sum.Succeeded, sum.Total)
	default:
		fmt.Fprintf(s.console, "\nInstalled %d/%d plugins (%d failed, %d skipped)\n",
			sum.Succeeded, sum.Total, sum.Failed, sum.Skipped)
	}
}

// persist writes the receipt. Recording failures warn and never fail the
// run; the install already happened.
func (s *InstallService) persist(report run.Report) {
	s.log.Printf("run %s finished: %d total, %d succeeded, %d failed, %d skipped",
		report.RunID, report.Summary.Total, report.Summary.Succeeded,
		report.Summary.Failed, report.Summary.Skipped)

	if s.history == nil {
		return
	}
	if err := s.history.RecordRun(report); err != nil {
		fmt.Fprintf(s.console, "⚠️  Failed to record run history: %v\n", err)
		s.log.Printf("failed to record run %s: %v", report.RunID, err)
	}
}
