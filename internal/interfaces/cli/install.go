package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/application/services"
	"plugup.dev/cli/internal/core/domain/catalog"
)

// installFlags holds the flag values for the install command.
type installFlags struct {
	categories    []string
	dryRun        bool
	skipPreflight bool
	strict        bool
	pick          bool
}

// NewInstallCommand creates the install command.
func NewInstallCommand(container *Container) *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install [plugin...]",
		Short: "Install catalog plugins through the agent CLI",
		Long: `Install runs the catalog through the agent CLI's plugin command.

Preflight (prerequisites and marketplace registration) is fail-fast:
its first failure aborts before any install attempt. The install loop
itself never aborts: every selected entry is attempted exactly once,
in catalog order, and failures are reported and skipped past.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), container, flags, args)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.categories, "category", "c", nil, "Only install the named categories")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be installed without calling the agent")
	cmd.Flags().BoolVar(&flags.skipPreflight, "skip-preflight", false, "Skip prerequisites and marketplace registration")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit non-zero if any plugin failed to install")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "Pick plugins interactively")

	return cmd
}

func runInstall(ctx context.Context, container *Container, flags *installFlags, names []string) error {
	cat, err := container.LoadCatalog()
	if err != nil {
		return err
	}

	var selection []catalog.Plugin
	switch {
	case flags.pick:
		picked, canceled, err := pickPlugins(cat)
		if err != nil {
			return fmt.Errorf("picker failed: %w", err)
		}
		if canceled {
			fmt.Println("Nothing selected.")
			return nil
		}
		selection = picked
	case len(flags.categories) > 0 || len(names) > 0:
		selection = cat.Filter(flags.categories, names)
		if len(selection) == 0 {
			return fmt.Errorf("no catalog entries match the given selection")
		}
	default:
		selection = nil // whole catalog
	}

	// Ctrl-C stops cleanly: in-flight attempt finishes, the rest are
	// recorded as skipped.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	installer := services.NewInstallService(container.Driver, container.Executor, container.History, container.Log, os.Stdout)
	_, err = installer.Run(ctx, services.InstallRequest{
		Catalog:       cat,
		Selection:     selection,
		DryRun:        flags.dryRun,
		SkipPreflight: flags.skipPreflight,
		Strict:        flags.strict,
	})
	if errors.Is(err, services.ErrPluginsFailed) {
		return fmt.Errorf("strict mode: %w", err)
	}
	return err
}
