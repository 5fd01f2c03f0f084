package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plugup.dev/cli/internal/core/domain/catalog"
	"plugup.dev/cli/internal/infrastructure/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(container *Container) *cobra.Command {
	var withCatalog bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the plugup configuration",
		Long: `Init writes ~/.plugup/config.json, prompting for the basics. With
--with-catalog it also materializes the bundled catalog as an editable
file and points the config at it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(container, withCatalog, yes)
		},
	}

	cmd.Flags().BoolVar(&withCatalog, "with-catalog", false, "Write an editable copy of the bundled catalog")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")

	return cmd
}

func runInit(container *Container, withCatalog, yes bool) error {
	fmt.Println(titleStyle.Render("plugup setup"))
	fmt.Println("")

	cfg := config.Default()
	reader := bufio.NewReader(os.Stdin)

	if !yes {
		cfg.AgentBinary = promptString(reader, "Agent binary", cfg.AgentBinary)
		cfg.CommandTimeout = promptInt(reader, "Per-command timeout in seconds (0 = none)", cfg.CommandTimeout)
		cfg.HistoryEnabled = promptBool(reader, "Record install history", cfg.HistoryEnabled)
	}

	home, err := config.Home()
	if err != nil {
		return err
	}

	if withCatalog {
		catalogPath := filepath.Join(home, "catalog.yaml")
		if err := os.MkdirAll(home, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", home, err)
		}
		if err := os.WriteFile(catalogPath, catalog.DefaultBytes(), 0644); err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
		cfg.CatalogPath = catalogPath
		fmt.Printf("✅ Wrote editable catalog to %s\n", catalogPath)
	}

	cfg.Validate()
	if err := config.Save(cfg, ""); err != nil {
		return err
	}

	configPath, _ := config.DefaultPath()
	fmt.Printf("✅ Configuration written to %s\n", configPath)
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("1. Review the catalog with 'plugup list'")
	fmt.Println("2. Check the environment with 'plugup doctor'")
	fmt.Println("3. Install everything with 'plugup install'")

	return nil
}

func promptString(reader *bufio.Reader, label, fallback string) string {
	fmt.Printf("%s [%s]: ", label, fallback)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fallback
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}

func promptInt(reader *bufio.Reader, label string, fallback int) int {
	raw := promptString(reader, label, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func promptBool(reader *bufio.Reader, label string, fallback bool) bool {
	raw := promptString(reader, label, strconv.FormatBool(fallback))
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
