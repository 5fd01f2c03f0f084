package process

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugup.dev/cli/internal/core/domain/process"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive /bin/sh")
	}
}

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)
	executor := NewOSExecutor()

	cmd, err := process.NewCommand("sh", []string{"-c", "echo out; echo err >&2"})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRun_NonZeroExitIsExitError(t *testing.T) {
	requireShell(t)
	executor := NewOSExecutor()

	cmd, err := process.NewCommand("sh", []string{"-c", "echo broken >&2; exit 3"})
	require.NoError(t, err)

	result, runErr := executor.Run(context.Background(), cmd)
	require.Error(t, runErr)

	var exitErr *process.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	assert.Equal(t, 3, exitErr.Result.ExitCode)
	assert.Contains(t, exitErr.Error(), "broken")
	assert.Equal(t, 3, result.ExitCode)
}

func TestRun_MissingBinaryIsNotExitError(t *testing.T) {
	executor := NewOSExecutor()

	cmd, err := process.NewCommand("definitely-not-a-real-binary-xyz", nil)
	require.NoError(t, err)

	_, runErr := executor.Run(context.Background(), cmd)
	require.Error(t, runErr)

	var exitErr *process.ExitError
	assert.False(t, errors.As(runErr, &exitErr))
}

func TestRun_CommandTimeoutKillsTheChild(t *testing.T) {
	requireShell(t)
	executor := NewOSExecutor()

	cmd, err := process.NewCommand("sh", []string{"-c", "sleep 5"})
	require.NoError(t, err)

	start := time.Now()
	_, runErr := executor.Run(context.Background(), cmd.WithTimeout(100*time.Millisecond))
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_PassesExtraEnvironment(t *testing.T) {
	requireShell(t)
	executor := NewOSExecutor()

	cmd, err := process.NewCommand("sh", []string{"-c", "printf '%s' \"$PLUGUP_TEST_VAR\""})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), cmd.WithEnv("PLUGUP_TEST_VAR", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Stdout)
}
