package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewMarketplaceCommand creates the marketplace command group.
func NewMarketplaceCommand(container *Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Manage the agent's plugin marketplaces",
	}

	cmd.AddCommand(newMarketplaceAddCommand(container))
	cmd.AddCommand(newMarketplaceListCommand(container))

	return cmd
}

func newMarketplaceAddCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <source>",
		Short: "Register a marketplace source with the agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			fmt.Printf("Registering marketplace %s...\n", source)
			if err := container.Driver.AddMarketplace(cmd.Context(), source); err != nil {
				return fmt.Errorf("failed to register marketplace: %w", err)
			}
			container.Log.Printf("marketplace registered from %s", source)
			fmt.Println("✅ Marketplace registered")
			return nil
		},
	}
}

func newMarketplaceListCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog's declared marketplaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := container.LoadCatalog()
			if err != nil {
				return err
			}

			if len(cat.Marketplaces) == 0 {
				fmt.Println("No marketplaces declared in the catalog.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCE")
			for _, m := range cat.Marketplaces {
				fmt.Fprintf(w, "%s\t%s\n", m.Name, m.Source)
			}
			return w.Flush()
		},
	}
}
