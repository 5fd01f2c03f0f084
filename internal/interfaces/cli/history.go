package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(container *Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent install runs, or one run's attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history is disabled; enable it in the config to keep run receipts")
			}
			if len(args) == 1 {
				return showRunDetail(container, args[0])
			}
			return showRecentRuns(container, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func showRecentRuns(container *Container, limit int) error {
	records, err := container.History.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No install runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tTOTAL\tOK\tFAILED\tSKIPPED\tMODE")
	for _, rec := range records {
		mode := ""
		if rec.DryRun {
			mode = dimStyle.Render("dry-run")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			rec.RunID, rec.StartedAt.Local().Format(time.RFC3339),
			rec.Summary.Total, rec.Summary.Succeeded, rec.Summary.Failed, rec.Summary.Skipped, mode)
	}
	return w.Flush()
}

func showRunDetail(container *Container, runID string) error {
	attempts, err := container.History.RunAttempts(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if len(attempts) == 0 {
		return fmt.Errorf("no run found with ID %s", runID)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Run %s", runID)))
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLUGIN\tCATEGORY\tOUTCOME\tDURATION\tDETAIL")
	for _, a := range attempts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Seq, a.Plugin, a.Category, outcomeLabel(string(a.Outcome)),
			a.Duration.Round(time.Millisecond), truncate(a.Detail, 60))
	}
	return w.Flush()
}
