package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest recorded outcome per plugin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history is disabled; enable it in the config to track plugin status")
			}

			statuses, err := container.History.PluginStatuses()
			if err != nil {
				return fmt.Errorf("failed to load plugin statuses: %w", err)
			}

			if len(statuses) == 0 {
				fmt.Println("No install runs recorded yet. Run 'plugup install' first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "PLUGIN\tCATEGORY\tLAST RESULT\tWHEN\tDETAIL")
			for _, st := range statuses {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					st.Plugin, st.Category, outcomeLabel(string(st.Outcome)),
					st.RecordedAt.Local().Format(time.RFC3339), truncate(st.Detail, 60))
			}
			return w.Flush()
		},
	}
}
