package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the persisted plugup settings. Everything has a usable
// default so a missing file is not an error.
type Config struct {
	AgentBinary    string   `json:"agent_binary"`
	AgentArgs      []string `json:"agent_args,omitempty"`
	CatalogPath    string   `json:"catalog_path,omitempty"`
	SkillsDir      string   `json:"skills_dir,omitempty"`
	CommandTimeout int      `json:"command_timeout_seconds"`
	Debug          bool     `json:"debug"`
	HistoryEnabled bool     `json:"history_enabled"`
}

// Default returns the built-in configuration: drive the `claude` binary with
// no extra args and no per-command timeout, record history, install skills
// under the agent's skills directory.
func Default() *Config {
	return &Config{
		AgentBinary:    "claude",
		CommandTimeout: 0,
		HistoryEnabled: true,
	}
}

// Home returns the plugup state directory (~/.plugup), honoring the
// PLUGUP_HOME override.
func Home() (string, error) {
	if custom := os.Getenv("PLUGUP_HOME"); custom != "" {
		return custom, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".plugup"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.json"), nil
}

// DefaultSkillsDir returns where skills are installed when the config does
// not say otherwise: the agent's own skills directory.
func DefaultSkillsDir() (string, error) {
	if custom := os.Getenv("PLUGUP_SKILLS_DIR"); custom != "" {
		return custom, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "skills"), nil
}

// Load reads the config file at path (empty means the default location),
// layers environment overrides on top, and validates the result. A missing
// file yields defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults stand.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvironment()
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to path (empty means the default location),
// creating the directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// applyEnvironment layers PLUGUP_* variables over file values.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("PLUGUP_AGENT"); v != "" {
		fields := strings.Fields(v)
		c.AgentBinary = fields[0]
		if len(fields) > 1 {
			c.AgentArgs = fields[1:]
		}
	}
	if v := os.Getenv("PLUGUP_CATALOG"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("PLUGUP_SKILLS_DIR"); v != "" {
		c.SkillsDir = v
	}
	if v := os.Getenv("PLUGUP_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
}

// Validate repairs out-of-range values instead of failing; a config file
// should never brick the tool.
func (c *Config) Validate() {
	if strings.TrimSpace(c.AgentBinary) == "" {
		c.AgentBinary = Default().AgentBinary
	}
	if c.CommandTimeout < 0 {
		c.CommandTimeout = 0
	}
}
