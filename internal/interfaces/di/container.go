package di

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"plugup.dev/cli/internal/core/domain/catalog"
	"plugup.dev/cli/internal/infrastructure/agent"
	"plugup.dev/cli/internal/infrastructure/config"
	"plugup.dev/cli/internal/infrastructure/history"
	"plugup.dev/cli/internal/infrastructure/process"
	"plugup.dev/cli/internal/infrastructure/runlog"
	"plugup.dev/cli/internal/interfaces/cli"
)

// Container assembles the application dependencies.
type Container struct {
	CLI    *cli.Container
	Logger *log.Logger

	configPath string
}

// NewContainer builds the dependency graph from config, environment, and
// defaults. Persistent flags are applied later through the override methods.
func NewContainer() (*Container, error) {
	c := &Container{
		Logger: log.New(os.Stderr, "[plugup] ", log.LstdFlags),
	}

	if err := c.initialize(""); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return c, nil
}

// initialize (re)builds everything downstream of the config.
func (c *Container) initialize(configPath string) error {
	c.configPath = configPath

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	home, err := config.Home()
	if err != nil {
		return err
	}

	var debugLogger *log.Logger
	if cfg.Debug {
		debugLogger = c.Logger
	}

	runLogger, err := runlog.New(home, debugLogger)
	if err != nil {
		// A read-only home degrades logging, nothing else.
		c.Logger.Printf("Warning: run log unavailable: %v", err)
		runLogger = nil
	}

	executor := process.NewOSExecutor()
	driver, err := agent.NewDriver(executor, cfg.AgentBinary, cfg.AgentArgs,
		time.Duration(cfg.CommandTimeout)*time.Second)
	if err != nil {
		return err
	}

	c.CLI = &cli.Container{
		Config:   cfg,
		Driver:   driver,
		Executor: executor,
		Log:      runLogger,
	}
	c.CLI.Overrides = c
	c.CLI.LoadCatalog = func() (catalog.Catalog, error) {
		if c.CLI.Config.CatalogPath != "" {
			return catalog.Load(c.CLI.Config.CatalogPath)
		}
		return catalog.Default()
	}

	if cfg.HistoryEnabled {
		store, err := history.Open(filepath.Join(home, "history.db"))
		if err != nil {
			// Receipts are best-effort; installs still run.
			c.Logger.Printf("Warning: history store unavailable: %v", err)
			runLogger.Printf("history store unavailable: %v", err)
		} else {
			c.CLI.History = store
		}
	}

	return nil
}

// ApplyConfigOverride reloads the graph from an explicit config file.
func (c *Container) ApplyConfigOverride(path string) error {
	c.Close()
	return c.initialize(path)
}

// ApplyAgentOverride swaps the driver for a different agent binary.
func (c *Container) ApplyAgentOverride(binary string) error {
	c.CLI.Config.AgentBinary = binary
	c.CLI.Config.Validate()

	driver, err := agent.NewDriver(c.CLI.Executor, c.CLI.Config.AgentBinary, c.CLI.Config.AgentArgs,
		time.Duration(c.CLI.Config.CommandTimeout)*time.Second)
	if err != nil {
		return err
	}
	c.CLI.Driver = driver
	return nil
}

// ApplyCatalogOverride points catalog loading at an explicit file.
func (c *Container) ApplyCatalogOverride(path string) error {
	if path == "" {
		return fmt.Errorf("catalog path cannot be empty")
	}
	c.CLI.Config.CatalogPath = path
	return nil
}

// ApplyDebugOverride toggles debug echo of the run log.
func (c *Container) ApplyDebugOverride(debug bool) error {
	c.CLI.Config.Debug = debug
	if c.CLI.Log != nil {
		home, err := config.Home()
		if err != nil {
			return err
		}
		var debugLogger *log.Logger
		if debug {
			debugLogger = c.Logger
		}
		c.CLI.Log.Close()
		relog, err := runlog.New(home, debugLogger)
		if err != nil {
			return err
		}
		c.CLI.Log = relog
	}
	return nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.CLI == nil {
		return
	}
	if c.CLI.History != nil {
		if err := c.CLI.History.Close(); err != nil {
			c.Logger.Printf("Warning: failed to close history store: %v", err)
		}
		c.CLI.History = nil
	}
	if c.CLI.Log != nil {
		c.CLI.Log.Close()
	}
}
