package process

import (
	"fmt"
	"strings"
	"time"
)

// Command is a value object describing one external invocation.
type Command struct {
	executable string
	args       []string
	workingDir string
	env        map[string]string
	timeout    time.Duration
}

// NewCommand creates a Command with validation. A zero timeout means the
// call may block until the child exits.
func NewCommand(executable string, args []string) (Command, error) {
	if executable == "" {
		return Command{}, fmt.Errorf("executable cannot be empty")
	}

	return Command{
		executable: executable,
		args:       append([]string(nil), args...),
		env:        make(map[string]string),
	}, nil
}

// Executable returns the command executable.
func (c Command) Executable() string {
	return c.executable
}

// Args returns a copy of the command arguments.
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// WorkingDir returns the working directory for the command. Empty means the
// caller's current directory.
func (c Command) WorkingDir() string {
	return c.workingDir
}

// Env returns a copy of the extra environment variables.
func (c Command) Env() map[string]string {
	envCopy := make(map[string]string, len(c.env))
	for k, v := range c.env {
		envCopy[k] = v
	}
	return envCopy
}

// Timeout returns the per-invocation deadline. Zero means none.
func (c Command) Timeout() time.Duration {
	return c.timeout
}

// WithTimeout returns a copy of the command with the given deadline.
func (c Command) WithTimeout(d time.Duration) Command {
	out := c.clone()
	out.timeout = d
	return out
}

// WithWorkingDir returns a copy of the command with the given directory.
func (c Command) WithWorkingDir(dir string) Command {
	out := c.clone()
	out.workingDir = dir
	return out
}

// WithEnv returns a copy of the command with an additional environment
// variable.
func (c Command) WithEnv(key, value string) Command {
	out := c.clone()
	out.env[key] = value
	return out
}

func (c Command) clone() Command {
	env := make(map[string]string, len(c.env))
	for k, v := range c.env {
		env[k] = v
	}
	return Command{
		executable: c.executable,
		args:       append([]string(nil), c.args...),
		workingDir: c.workingDir,
		env:        env,
		timeout:    c.timeout,
	}
}

// String returns the command line for display.
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.executable
	}
	return fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " "))
}

// Result captures the observable outcome of one finished invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExitError is returned when the child ran to completion with a non-zero
// exit code. The Result is still populated.
type ExitError struct {
	Command Command
	Result  Result
}

func (e *ExitError) Error() string {
	tail := stderrTail(e.Result.Stderr, 3)
	if tail == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command.Executable(), e.Result.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command.Executable(), e.Result.ExitCode, tail)
}

// stderrTail keeps the last n non-empty lines, which is where CLI tools put
// the actionable message.
func stderrTail(stderr string, n int) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
