package ports

import "context"

// AgentDriver speaks to the external agent CLI. The agent owns every plugin
// mechanic (download, versioning, state); failure here means exactly "the
// agent command returned non-zero".
type AgentDriver interface {
	// Binary returns the agent executable name, for preflight resolution
	// and diagnostics.
	Binary() string

	// InstallPlugin issues one install for name, optionally qualified with a
	// marketplace.
	InstallPlugin(ctx context.Context, name, marketplace string) error

	// RemovePlugin uninstalls a plugin by name.
	RemovePlugin(ctx context.Context, name string) error

	// AddMarketplace registers a marketplace source with the agent.
	AddMarketplace(ctx context.Context, source string) error

	// Version probes the agent binary and returns its version string.
	Version(ctx context.Context) (string, error)
}
