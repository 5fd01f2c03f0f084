package run

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRunID_Creation_ValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "ValidID_ShouldSucceed", input: "run-123", expectError: false},
		{name: "EmptyID_ShouldFail", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewRunID(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, id.Value())
			}
		})
	}
}

func TestGenerateRunID_ProducesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRunID()
		assert.NotEmpty(t, id.Value())
		assert.False(t, seen[id.Value()], "generated duplicate run ID %s", id)
		seen[id.Value()] = true
	}
}

func TestRun_Lifecycle(t *testing.T) {
	r := NewRun(false)
	assert.Equal(t, StateCreated, r.State())

	// Recording before Begin is rejected.
	err := r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: OutcomeSuccess})
	assert.Error(t, err)

	require.NoError(t, r.Begin())
	assert.Equal(t, StateActive, r.State())

	// Double Begin is rejected.
	assert.Error(t, r.Begin())

	require.NoError(t, r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: OutcomeSuccess}))
	require.NoError(t, r.Finish())
	assert.Equal(t, StateFinished, r.State())

	// Recording after Finish is rejected.
	assert.Error(t, r.RecordAttempt(Attempt{Seq: 2, Plugin: "b", Outcome: OutcomeFailed}))

	// Double Finish is rejected.
	assert.Error(t, r.Finish())
}

func TestRun_RecordAttempt_EnforcesSequence(t *testing.T) {
	r := NewRun(false)
	require.NoError(t, r.Begin())

	require.NoError(t, r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: OutcomeSuccess}))

	// Gaps and repeats are both out of sequence.
	assert.Error(t, r.RecordAttempt(Attempt{Seq: 3, Plugin: "c", Outcome: OutcomeSuccess}))
	assert.Error(t, r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: OutcomeSuccess}))

	require.NoError(t, r.RecordAttempt(Attempt{Seq: 2, Plugin: "b", Outcome: OutcomeFailed}))
}

func TestRun_RecordAttempt_RejectsUnknownOutcome(t *testing.T) {
	r := NewRun(false)
	require.NoError(t, r.Begin())

	err := r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: Outcome("exploded")})
	assert.Error(t, err)
}

func TestRun_Report_CopiesAttempts(t *testing.T) {
	r := NewRun(true)
	require.NoError(t, r.Begin())
	require.NoError(t, r.RecordAttempt(Attempt{Seq: 1, Plugin: "a", Outcome: OutcomeSkipped, Detail: "dry run"}))
	require.NoError(t, r.Finish())

	report := r.Report()
	assert.True(t, report.DryRun)
	require.Len(t, report.Attempts, 1)
	require.NotNil(t, report.FinishedAt)

	// Mutating the snapshot must not reach the aggregate.
	report.Attempts[0].Plugin = "tampered"
	assert.Equal(t, "a", r.Report().Attempts[0].Plugin)
}

// TestRun_SummaryArithmetic verifies the summary invariants over arbitrary
// outcome interleavings: Total == len(attempts) and the outcome counts
// partition the total.
func TestRun_SummaryArithmetic(t *testing.T) {
	outcomes := []Outcome{OutcomeSuccess, OutcomeFailed, OutcomeSkipped}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "attempts")

		r := NewRun(false)
		require.NoError(t, r.Begin())

		want := map[Outcome]int{}
		for i := 0; i < n; i++ {
			outcome := outcomes[rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("outcome%d", i))]
			want[outcome]++
			require.NoError(t, r.RecordAttempt(Attempt{
				Seq:     i + 1,
				Plugin:  fmt.Sprintf("plugin-%d", i),
				Outcome: outcome,
			}))
		}
		require.NoError(t, r.Finish())

		sum := r.Summary()
		assert.Equal(t, n, sum.Total)
		assert.Equal(t, want[OutcomeSuccess], sum.Succeeded)
		assert.Equal(t, want[OutcomeFailed], sum.Failed)
		assert.Equal(t, want[OutcomeSkipped], sum.Skipped)
		assert.Equal(t, sum.Total, sum.Succeeded+sum.Failed+sum.Skipped)
		assert.Len(t, r.Report().Attempts, n)
	})
}
