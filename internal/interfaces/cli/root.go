package cli

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/core/domain/catalog"
	"plugup.dev/cli/internal/core/ports"
	"plugup.dev/cli/internal/infrastructure/config"
	"plugup.dev/cli/internal/infrastructure/runlog"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Container holds the dependencies CLI commands pull from. It is assembled
// by the di package.
type Container struct {
	Config   *config.Config
	Driver   ports.AgentDriver
	Executor ports.Executor
	History  ports.HistoryStore // nil when history is disabled or unavailable
	Log      *runlog.Logger

	// LoadCatalog resolves the active catalog: --catalog flag, config,
	// or the embedded default.
	LoadCatalog func() (catalog.Catalog, error)

	// Overrides is set by the di package so persistent flags can rewire
	// dependencies before a command runs.
	Overrides FlagOverrides
}

// FlagOverrides applies persistent-flag values back into the container.
type FlagOverrides interface {
	ApplyConfigOverride(path string) error
	ApplyAgentOverride(binary string) error
	ApplyCatalogOverride(path string) error
	ApplyDebugOverride(debug bool) error
}

// NewRootCommand builds the plugup command tree.
func NewRootCommand(container *Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plugup",
		Short: "plugup - plugin and skill provisioning for agent CLIs",
		Long: `plugup provisions an external agent CLI with plugins and skills.

It reads an ordered catalog of plugin entries, registers marketplaces,
and installs each entry through the agent's own plugin command,
tolerating per-plugin failures without aborting the batch.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyFlagOverrides(cmd, container); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.plugup/config.json)")
	rootCmd.PersistentFlags().String("agent", "", "Agent binary to drive (default from config)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog file path (default is the bundled catalog)")

	rootCmd.AddCommand(NewInstallCommand(container))
	rootCmd.AddCommand(NewListCommand(container))
	rootCmd.AddCommand(NewMarketplaceCommand(container))
	rootCmd.AddCommand(NewSkillsCommand(container))
	rootCmd.AddCommand(NewStatusCommand(container))
	rootCmd.AddCommand(NewHistoryCommand(container))
	rootCmd.AddCommand(NewDoctorCommand(container))
	rootCmd.AddCommand(NewInitCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary.
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func applyFlagOverrides(cmd *cobra.Command, container *Container) error {
	if container.Overrides == nil {
		return nil
	}

	// Config first: a reload resets everything the other overrides touch.
	if cmd.Flags().Changed("config") {
		path, _ := cmd.Flags().GetString("config")
		if err := container.Overrides.ApplyConfigOverride(path); err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	if cmd.Flags().Changed("agent") {
		agent, _ := cmd.Flags().GetString("agent")
		if err := container.Overrides.ApplyAgentOverride(agent); err != nil {
			return fmt.Errorf("failed to override agent binary: %w", err)
		}
	}
	if cmd.Flags().Changed("catalog") {
		path, _ := cmd.Flags().GetString("catalog")
		if err := container.Overrides.ApplyCatalogOverride(path); err != nil {
			return fmt.Errorf("failed to override catalog path: %w", err)
		}
	}
	if cmd.Flags().Changed("debug") {
		debugFlag, _ := cmd.Flags().GetBool("debug")
		if err := container.Overrides.ApplyDebugOverride(debugFlag); err != nil {
			return fmt.Errorf("failed to override debug mode: %w", err)
		}
	}

	return nil
}

// Execute runs the root command, mapping errors to a non-zero exit.
func Execute(container *Container) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
