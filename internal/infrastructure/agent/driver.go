// Package agent drives the external agent CLI through its slash-command
// surface. The agent's interface and exit codes are owned by that tool; this
// adapter only shapes command lines and maps non-zero exits to errors.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plugup.dev/cli/internal/core/domain/process"
	"plugup.dev/cli/internal/core/ports"
)

// Driver invokes the agent binary once per operation.
type Driver struct {
	executor ports.Executor
	binary   string
	baseArgs []string
	timeout  time.Duration
}

// NewDriver creates a driver for the given binary. baseArgs are prepended to
// every invocation; timeout zero means unbounded calls.
func NewDriver(executor ports.Executor, binary string, baseArgs []string, timeout time.Duration) (*Driver, error) {
	if binary == "" {
		return nil, fmt.Errorf("agent binary cannot be empty")
	}
	return &Driver{
		executor: executor,
		binary:   binary,
		baseArgs: append([]string(nil), baseArgs...),
		timeout:  timeout,
	}, nil
}

// Binary returns the configured agent executable name.
func (d *Driver) Binary() string {
	return d.binary
}

// InstallPlugin runs `<agent> "/plugin install name[@marketplace]"`.
func (d *Driver) InstallPlugin(ctx context.Context, name, marketplace string) error {
	ref := name
	if marketplace != "" {
		ref = name + "@" + marketplace
	}
	return d.slash(ctx, fmt.Sprintf("/plugin install %s", ref))
}

// RemovePlugin runs `<agent> "/plugin uninstall name"`.
func (d *Driver) RemovePlugin(ctx context.Context, name string) error {
	return d.slash(ctx, fmt.Sprintf("/plugin uninstall %s", name))
}

// AddMarketplace runs `<agent> "/plugin marketplace add source"`.
func (d *Driver) AddMarketplace(ctx context.Context, source string) error {
	return d.slash(ctx, fmt.Sprintf("/plugin marketplace add %s", source))
}

// Version probes the binary with --version.
func (d *Driver) Version(ctx context.Context) (string, error) {
	cmd, err := process.NewCommand(d.binary, append(d.baseArgs, "--version"))
	if err != nil {
		return "", err
	}
	result, err := d.executor.Run(ctx, cmd.WithTimeout(d.timeout))
	if err != nil {
		return "", fmt.Errorf("failed to probe %s: %w", d.binary, err)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// slash hands one slash command to the agent as a single argument, the same
// shape the agent accepts interactively.
func (d *Driver) slash(ctx context.Context, command string) error {
	cmd, err := process.NewCommand(d.binary, append(d.baseArgs, command))
	if err != nil {
		return err
	}
	if _, err := d.executor.Run(ctx, cmd.WithTimeout(d.timeout)); err != nil {
		return err
	}
	return nil
}
