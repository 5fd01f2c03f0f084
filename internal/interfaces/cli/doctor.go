package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/infrastructure/config"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment plugup depends on",
		Long: `Doctor checks, in order: the agent binary, its version probe, the
plugup home directory, the catalog, the skills directory, and the
history store. Hard failures exit non-zero; catalog lint findings are
warnings only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, container)
		},
	}
}

func runDoctor(cmd *cobra.Command, container *Container) error {
	fmt.Println(titleStyle.Render("🔍 plugup doctor"))
	fmt.Println("")

	hardFailures := 0
	check := func(what string, fn func() error) {
		fmt.Printf("Checking %s... ", what)
		if err := fn(); err != nil {
			hardFailures++
			fmt.Println("❌")
			fmt.Printf("   %v\n", err)
			return
		}
		fmt.Println("✅")
	}

	binary := container.Driver.Binary()
	check(fmt.Sprintf("agent binary (%s)", binary), func() error {
		_, err := exec.LookPath(binary)
		return err
	})

	check("agent version", func() error {
		version, err := container.Driver.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("[%s] ", version)
		return nil
	})

	check("plugup home", func() error {
		home, err := config.Home()
		if err != nil {
			return err
		}
		return writableDir(home)
	})

	var lintWarnings []string
	check("catalog", func() error {
		cat, err := container.LoadCatalog()
		if err != nil {
			return err
		}
		for _, finding := range cat.Lint() {
			lintWarnings = append(lintWarnings, finding.String())
		}
		fmt.Printf("[%d plugins] ", cat.Total())
		return nil
	})

	check("skills directory", func() error {
		dir, err := skillsDir(container)
		if err != nil {
			return err
		}
		return writableDir(dir)
	})

	check("history store", func() error {
		if container.History == nil {
			if !container.Config.HistoryEnabled {
				return nil // disabled on purpose
			}
			return fmt.Errorf("history is enabled but the store failed to open; see the run log")
		}
		_, err := container.History.RecentRuns(1)
		return err
	})

	if len(lintWarnings) > 0 {
		fmt.Println("")
		fmt.Println(warnStyle.Render("Catalog warnings:"))
		for _, w := range lintWarnings {
			fmt.Printf("  ⚠️  %s\n", w)
		}
	}

	fmt.Println("")
	if hardFailures > 0 {
		return fmt.Errorf("%d check(s) failed", hardFailures)
	}
	fmt.Println("✅ All checks passed")
	return nil
}

// writableDir ensures the directory exists and accepts writes.
func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".plugup-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	return os.Remove(probe)
}
