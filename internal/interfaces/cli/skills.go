package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/infrastructure/config"
	"plugup.dev/cli/internal/infrastructure/skills"
)

// NewSkillsCommand creates the skills command group.
func NewSkillsCommand(container *Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Manage bundled skill documents",
		Long: `Skills are markdown reference documents (style guides, pattern
references) installed into the agent's skills directory.`,
	}

	cmd.AddCommand(newSkillsListCommand(container))
	cmd.AddCommand(newSkillsShowCommand())
	cmd.AddCommand(newSkillsInstallCommand(container))

	return cmd
}

// skillsDir resolves the target directory: config first, then the default.
func skillsDir(container *Container) (string, error) {
	if container.Config.SkillsDir != "" {
		return container.Config.SkillsDir, nil
	}
	return config.DefaultSkillsDir()
}

func newSkillsListCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bundled skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundledSkills, err := skills.List()
			if err != nil {
				return err
			}

			baseDir, err := skillsDir(container)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SKILL\tINSTALLED\tDESCRIPTION")
			for _, s := range bundledSkills {
				installed := dimStyle.Render("no")
				if skills.Installed(baseDir, s.Slug) {
					installed = successStyle.Render("yes")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Slug, installed, s.Description)
			}
			return w.Flush()
		},
	}
}

func newSkillsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <skill>",
		Short: "Print a bundled skill document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := skills.Read(args[0])
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newSkillsInstallCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "install [skill...]",
		Short: "Install bundled skills into the agent's skills directory",
		Long: `Install writes skill documents under the skills directory, one folder
per skill. With no arguments every bundled skill is installed.
Overwriting an existing copy is the intended behavior; a failing skill
is reported and does not stop the remaining installs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := skillsDir(container)
			if err != nil {
				return err
			}

			slugs := args
			if len(slugs) == 0 {
				bundledSkills, err := skills.List()
				if err != nil {
					return err
				}
				for _, s := range bundledSkills {
					slugs = append(slugs, s.Slug)
				}
			}

			failed := 0
			for _, slug := range slugs {
				path, err := skills.Install(baseDir, slug)
				if err != nil {
					failed++
					fmt.Printf("⚠️  Failed to install skill %s: %v\n", slug, err)
					container.Log.Printf("skill %s install failed: %v", slug, err)
					continue
				}
				fmt.Printf("✅ Installed %s -> %s\n", slug, path)
				container.Log.Printf("skill %s installed at %s", slug, path)
			}

			if failed > 0 {
				fmt.Printf("\nInstalled %d/%d skills\n", len(slugs)-failed, len(slugs))
			}
			return nil
		},
	}
}
