package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/core/domain/run"
	"plugup.dev/cli/internal/core/ports"
)

// NewListCommand creates the list command.
func NewListCommand(container *Container) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog plugins and their last recorded result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(container, categories)
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Only list the named categories")

	return cmd
}

func runList(container *Container, categories []string) error {
	cat, err := container.LoadCatalog()
	if err != nil {
		return err
	}

	entries := cat.Filter(categories, nil)
	if len(entries) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}

	// Last results come from history when it is available; a broken store
	// only degrades the listing.
	lastResult := make(map[string]ports.PluginStatus)
	if container.History != nil {
		statuses, err := container.History.PluginStatuses()
		if err == nil {
			for _, st := range statuses {
				lastResult[st.Plugin] = st
			}
		}
	}

	fmt.Println(titleStyle.Render("📦 Catalog"))
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tPLUGIN\tMARKETPLACE\tLAST RESULT\tDESCRIPTION")
	for _, p := range entries {
		last := dimStyle.Render("never")
		if st, ok := lastResult[p.Name]; ok {
			last = outcomeLabel(string(st.Outcome))
			if st.Outcome == run.OutcomeFailed && st.Detail != "" {
				last = fmt.Sprintf("%s (%s)", last, truncate(st.Detail, 40))
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Category, p.Name, p.Marketplace, last, p.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d plugins in %d categories\n", cat.Total(), len(cat.Categories))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
