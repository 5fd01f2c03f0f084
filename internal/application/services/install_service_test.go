package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"plugup.dev/cli/internal/core/domain/catalog"
	"plugup.dev/cli/internal/core/domain/process"
	"plugup.dev/cli/internal/core/domain/run"
	"plugup.dev/cli/internal/core/ports"
)

// fakeDriver records driver calls and fails the configured plugin names.
type fakeDriver struct {
	binary       string
	installs     []string
	marketplaces []string
	failing      map[string]bool
	failMarkets  bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{binary: "claude", installs: []string{}, failing: make(map[string]bool)}
}

func (d *fakeDriver) Binary() string { return d.binary }

func (d *fakeDriver) InstallPlugin(ctx context.Context, name, marketplace string) error {
	ref := name
	if marketplace != "" {
		ref = name + "@" + marketplace
	}
	d.installs = append(d.installs, ref)
	if d.failing[name] {
		return fmt.Errorf("simulated install failure for %s", name)
	}
	return nil
}

func (d *fakeDriver) RemovePlugin(ctx context.Context, name string) error { return nil }

func (d *fakeDriver) AddMarketplace(ctx context.Context, source string) error {
	d.marketplaces = append(d.marketplaces, source)
	if d.failMarkets {
		return errors.New("simulated marketplace failure")
	}
	return nil
}

func (d *fakeDriver) Version(ctx context.Context) (string, error) { return "1.0.0", nil }

// fakeExecutor records prerequisite commands and optionally fails them.
type fakeExecutor struct {
	commands []string
	fail     bool
}

func (e *fakeExecutor) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	e.commands = append(e.commands, cmd.String())
	if e.fail {
		return process.Result{ExitCode: 1}, &process.ExitError{Command: cmd, Result: process.Result{ExitCode: 1}}
	}
	return process.Result{}, nil
}

// fakeHistory records reports handed to the store.
type fakeHistory struct {
	reports []run.Report
	fail    bool
}

func (h *fakeHistory) RecordRun(report run.Report) error {
	if h.fail {
		return errors.New("simulated history failure")
	}
	h.reports = append(h.reports, report)
	return nil
}

func (h *fakeHistory) RecentRuns(limit int) ([]ports.RunRecord, error) { return nil, nil }
func (h *fakeHistory) RunAttempts(runID string) ([]run.Attempt, error) { return nil, nil }
func (h *fakeHistory) PluginStatuses() ([]ports.PluginStatus, error)   { return nil, nil }
func (h *fakeHistory) Close() error                                    { return nil }

// installFixture wires a service around fakes.
type installFixture struct {
	driver   *fakeDriver
	executor *fakeExecutor
	history  *fakeHistory
	console  *bytes.Buffer
	service  *InstallService
}

func newInstallFixture() *installFixture {
	f := &installFixture{
		driver:   newFakeDriver(),
		executor: &fakeExecutor{},
		history:  &fakeHistory{},
		console:  &bytes.Buffer{},
	}
	f.service = NewInstallService(f.driver, f.executor, f.history, nil, f.console)
	f.service.lookPath = func(string) (string, error) { return "/usr/bin/claude", nil }
	return f
}

func testCatalog(t interface{ Fatalf(string, ...any) }, names ...string) catalog.Catalog {
	var b strings.Builder
	b.WriteString("categories:\n  - name: Test\n    plugins:\n")
	if len(names) == 0 {
		b.WriteString("      []\n")
	}
	for _, name := range names {
		fmt.Fprintf(&b, "      - name: %s\n", name)
	}
	cat, err := catalog.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return cat
}

func TestRun_AttemptsEveryEntryInOrder(t *testing.T) {
	f := newInstallFixture()
	cat := testCatalog(t, "a", "b", "c")

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, f.driver.installs)
	assert.Equal(t, run.Summary{Total: 3, Succeeded: 3}, report.Summary)
}

func TestRun_FailureDoesNotStopTheBatch(t *testing.T) {
	f := newInstallFixture()
	f.driver.failing["a"] = true
	cat := testCatalog(t, "a", "b")

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err, "per-plugin failures never fail the batch")

	assert.Equal(t, []string{"a", "b"}, f.driver.installs, "both entries attempted")
	assert.Equal(t, run.Summary{Total: 2, Succeeded: 1, Failed: 1}, report.Summary)

	console := f.console.String()
	assert.Equal(t, 1, strings.Count(console, "⚠️"), "exactly one warning line")
	assert.Contains(t, console, "[1/2] Installing a...")
	assert.Contains(t, console, "[2/2] Installing b...")
}

func TestRun_StrictModeStillAttemptsEverything(t *testing.T) {
	f := newInstallFixture()
	f.driver.failing["a"] = true
	cat := testCatalog(t, "a", "b")

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat, Strict: true})
	assert.ErrorIs(t, err, ErrPluginsFailed)
	assert.Equal(t, []string{"a", "b"}, f.driver.installs)
	assert.Equal(t, 1, report.Summary.Failed)
}

func TestRun_DryRunMakesNoDriverCalls(t *testing.T) {
	f := newInstallFixture()
	cat := testCatalog(t, "a", "b")

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, f.driver.installs)
	assert.Empty(t, f.driver.marketplaces, "dry run skips preflight too")
	assert.Equal(t, run.Summary{Total: 2, Skipped: 2}, report.Summary)
	for _, a := range report.Attempts {
		assert.Equal(t, run.OutcomeSkipped, a.Outcome)
		assert.Equal(t, "dry run", a.Detail)
	}
}

func TestRun_PreflightFailureAbortsBeforeAnyAttempt(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*installFixture)
	}{
		{
			name: "MissingAgentBinary",
			setup: func(f *installFixture) {
				f.service.lookPath = func(string) (string, error) { return "", errors.New("not found") }
			},
		},
		{
			name:  "FailingPrerequisite",
			setup: func(f *installFixture) { f.executor.fail = true },
		},
		{
			name:  "FailingMarketplace",
			setup: func(f *installFixture) { f.driver.failMarkets = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInstallFixture()
			tt.setup(f)

			cat, err := catalog.Parse([]byte(`
marketplaces:
  - name: community
    source: https://example.com/mp
prerequisites:
  - name: git
    command: ["git", "--version"]
categories:
  - name: Test
    plugins:
      - name: a
`))
			require.NoError(t, err)

			_, err = f.service.Run(context.Background(), InstallRequest{Catalog: cat})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "preflight failed")
			assert.Empty(t, f.driver.installs, "no install attempts after a preflight failure")
		})
	}
}

func TestRun_SkipPreflightBypassesPrerequisitesAndMarketplaces(t *testing.T) {
	f := newInstallFixture()
	f.executor.fail = true
	f.driver.failMarkets = true

	cat, err := catalog.Parse([]byte(`
marketplaces:
  - name: community
    source: https://example.com/mp
prerequisites:
  - name: git
    command: ["git", "--version"]
categories:
  - name: Test
    plugins:
      - name: a
`))
	require.NoError(t, err)

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat, SkipPreflight: true})
	require.NoError(t, err)
	assert.Empty(t, f.executor.commands)
	assert.Empty(t, f.driver.marketplaces)
	assert.Equal(t, 1, report.Summary.Succeeded)
}

func TestRun_SelectionOverridesCatalogOrder(t *testing.T) {
	f := newInstallFixture()
	cat := testCatalog(t, "a", "b", "c")

	selection := cat.Filter(nil, []string{"b"})
	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat, Selection: selection})
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, f.driver.installs)
	assert.Equal(t, 1, report.Summary.Total)
}

func TestRun_CancellationSkipsRemainingEntries(t *testing.T) {
	f := newInstallFixture()
	cat := testCatalog(t, "a", "b", "c")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.Run(ctx, InstallRequest{Catalog: cat, SkipPreflight: true})
	require.NoError(t, err)

	assert.Empty(t, f.driver.installs)
	assert.Equal(t, run.Summary{Total: 3, Skipped: 3}, report.Summary)
	for _, a := range report.Attempts {
		assert.Equal(t, "canceled", a.Detail)
	}
}

func TestRun_RecordsReceiptToHistory(t *testing.T) {
	f := newInstallFixture()
	cat := testCatalog(t, "a")

	_, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err)

	require.Len(t, f.history.reports, 1)
	assert.Equal(t, 1, f.history.reports[0].Summary.Succeeded)
}

func TestRun_HistoryFailureWarnsAndContinues(t *testing.T) {
	f := newInstallFixture()
	f.history.fail = true
	cat := testCatalog(t, "a")

	report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err, "a broken history store never fails an install run")
	assert.Equal(t, 1, report.Summary.Succeeded)
	assert.Contains(t, f.console.String(), "Failed to record run history")
}

// TestRun_LoopProperties drives the loop with arbitrary entry counts and
// failure sets: exactly N attempts, in list order, no matter what fails.
func TestRun_LoopProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "entries")

		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("plugin-%d", i)
		}

		f := newInstallFixture()
		expectedFailed := 0
		for i := range names {
			if rapid.Bool().Draw(t, fmt.Sprintf("fail%d", i)) {
				f.driver.failing[names[i]] = true
				expectedFailed++
			}
		}

		cat := testCatalog(t, names...)
		report, err := f.service.Run(context.Background(), InstallRequest{Catalog: cat})
		require.NoError(t, err)

		assert.Equal(t, names, f.driver.installs, "exactly N attempts, in list order")
		assert.Equal(t, n, report.Summary.Total)
		assert.Equal(t, expectedFailed, report.Summary.Failed)
		assert.Equal(t, n-expectedFailed, report.Summary.Succeeded)

		for i, a := range report.Attempts {
			assert.Equal(t, i+1, a.Seq)
			assert.Equal(t, names[i], a.Plugin)
		}
	})
}

// TestRun_Rerunning_IsIdempotentAgainstAnIdempotentDriver re-runs the same
// list and expects an identical call sequence and equal summary.
func TestRun_Rerunning_IsIdempotentAgainstAnIdempotentDriver(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c")

	first := newInstallFixture()
	first.driver.failing["b"] = true
	firstReport, err := first.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err)

	second := newInstallFixture()
	second.driver.failing["b"] = true
	secondReport, err := second.service.Run(context.Background(), InstallRequest{Catalog: cat})
	require.NoError(t, err)

	assert.Equal(t, first.driver.installs, second.driver.installs)
	assert.Equal(t, firstReport.Summary, secondReport.Summary)
}
