package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"plugup.dev/cli/internal/core/domain/process"
)

// OSExecutor runs commands via os/exec, one at a time, to completion.
type OSExecutor struct {
	env []string
}

// NewOSExecutor creates an executor inheriting the current environment.
func NewOSExecutor() *OSExecutor {
	return &OSExecutor{env: os.Environ()}
}

// Run executes the command and blocks until it exits or the context (or the
// command's own timeout) cancels it. A non-zero exit comes back as
// *process.ExitError with the captured output attached.
func (e *OSExecutor) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	if timeout := cmd.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, cmd.Executable(), cmd.Args()...)
	if dir := cmd.WorkingDir(); dir != "" {
		execCmd.Dir = dir
	}
	execCmd.Env = e.buildEnvironment(cmd.Env())

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	runErr := execCmd.Run()
	result := process.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// Prefer the context error so a timeout reads as a timeout, not as
		// whatever exit code the killed child happened to report.
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.ExitCode = -1
			return result, fmt.Errorf("%s: %w", cmd.Executable(), ctxErr)
		}
		result.ExitCode = exitErr.ExitCode()
		return result, &process.ExitError{Command: cmd, Result: result}
	}

	result.ExitCode = -1
	return result, fmt.Errorf("failed to run %s: %w", cmd.Executable(), runErr)
}

// buildEnvironment layers command-specific variables over the base
// environment.
func (e *OSExecutor) buildEnvironment(cmdEnv map[string]string) []string {
	if len(cmdEnv) == 0 {
		return e.env
	}
	env := append([]string(nil), e.env...)
	for key, value := range cmdEnv {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}
