package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugup.dev/cli/internal/core/domain/run"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func buildReport(t *testing.T, attempts ...run.Attempt) run.Report {
	t.Helper()
	r := run.NewRun(false)
	require.NoError(t, r.Begin())
	for _, a := range attempts {
		require.NoError(t, r.RecordAttempt(a))
	}
	require.NoError(t, r.Finish())
	return r.Report()
}

func TestRecordRun_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	report := buildReport(t,
		run.Attempt{Seq: 1, Plugin: "a", Category: "Dev", Outcome: run.OutcomeSuccess, Duration: 120 * time.Millisecond},
		run.Attempt{Seq: 2, Plugin: "b", Category: "Dev", Marketplace: "community", Outcome: run.OutcomeFailed, Detail: "exit 1"},
	)
	require.NoError(t, store.RecordRun(report))

	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.RunID.Value(), records[0].RunID)
	assert.Equal(t, run.Summary{Total: 2, Succeeded: 1, Failed: 1}, records[0].Summary)
	assert.False(t, records[0].FinishedAt.IsZero())

	attempts, err := store.RunAttempts(report.RunID.Value())
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "a", attempts[0].Plugin)
	assert.Equal(t, run.OutcomeSuccess, attempts[0].Outcome)
	assert.Equal(t, 120*time.Millisecond, attempts[0].Duration)
	assert.Equal(t, "community", attempts[1].Marketplace)
	assert.Equal(t, "exit 1", attempts[1].Detail)
}

func TestRecordRun_DuplicateRunIDFails(t *testing.T) {
	store := openTestStore(t)

	report := buildReport(t, run.Attempt{Seq: 1, Plugin: "a", Category: "Dev", Outcome: run.OutcomeSuccess})
	require.NoError(t, store.RecordRun(report))
	assert.Error(t, store.RecordRun(report))
}

func TestRecentRuns_NewestFirstAndLimited(t *testing.T) {
	store := openTestStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		report := buildReport(t, run.Attempt{Seq: 1, Plugin: "a", Category: "Dev", Outcome: run.OutcomeSuccess})
		require.NoError(t, store.RecordRun(report))
		ids = append(ids, report.RunID.Value())
		time.Sleep(5 * time.Millisecond) // distinct started_at ordering
	}

	records, err := store.RecentRuns(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ids[4], records[0].RunID)
	assert.Equal(t, ids[3], records[1].RunID)
	assert.Equal(t, ids[2], records[2].RunID)
}

func TestPluginStatuses_LatestOutcomeWins(t *testing.T) {
	store := openTestStore(t)

	first := buildReport(t, run.Attempt{Seq: 1, Plugin: "a", Category: "Dev", Outcome: run.OutcomeFailed, Detail: "exit 1"})
	require.NoError(t, store.RecordRun(first))

	time.Sleep(5 * time.Millisecond) // distinct recorded_at ordering

	second := buildReport(t,
		run.Attempt{Seq: 1, Plugin: "a", Category: "Dev", Outcome: run.OutcomeSuccess},
		run.Attempt{Seq: 2, Plugin: "b", Category: "Dev", Outcome: run.OutcomeSkipped, Detail: "dry run"},
	)
	require.NoError(t, store.RecordRun(second))

	statuses, err := store.PluginStatuses()
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := make(map[string]string)
	for _, st := range statuses {
		byName[st.Plugin] = string(st.Outcome)
	}
	assert.Equal(t, "success", byName["a"], "newer run outcome replaces the older failure")
	assert.Equal(t, "skipped", byName["b"])
}

func TestRunAttempts_UnknownRunIsEmpty(t *testing.T) {
	store := openTestStore(t)

	attempts, err := store.RunAttempts("missing")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}
