// Package config holds tool-wide settings loaded from an optional YAML
// file and overridable by flags and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all zkforge configuration.
type Config struct {
	// HomeDir is the root of the managed proving workspaces. Defaults to
	// ~/.zkforge.
	HomeDir string `yaml:"home_dir"`

	// ProofDataDir is where proving runs deposit proof artifacts.
	ProofDataDir string `yaml:"proof_data_dir"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
	Submit    SubmitConfig    `yaml:"submit"`

	// BuildTimeout and ProveTimeout bound the cargo build and prove
	// subprocesses. Empty means no limit.
	BuildTimeout string `yaml:"build_timeout"`
	ProveTimeout string `yaml:"prove_timeout"`
}

// TelemetryConfig configures run telemetry collection.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	OutDir  string `yaml:"out_dir"`
}

// SubmitConfig configures proof submission to a verification network.
type SubmitConfig struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		HomeDir:      filepath.Join(home, ".zkforge"),
		ProofDataDir: "proof_data",
		Telemetry: TelemetryConfig{
			Enabled: false,
			OutDir:  ".",
		},
		Submit: SubmitConfig{
			Timeout: "5m",
		},
		ProveTimeout: "",
		BuildTimeout: "",
	}
}

// DefaultPath returns the conventional config file location,
// ~/.zkforge/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".zkforge", "config.yaml")
}

// Load reads configuration from a YAML file, layering it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file; defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ZKFORGE_HOME"); v != "" {
		c.HomeDir = v
	}
	if v := os.Getenv("ZKFORGE_ENDPOINT"); v != "" {
		c.Submit.Endpoint = v
	}
}

// GetBuildTimeout parses the build timeout. Zero means unbounded.
func (c *Config) GetBuildTimeout() time.Duration {
	return parseDuration(c.BuildTimeout)
}

// GetProveTimeout parses the prove timeout. Zero means unbounded.
func (c *Config) GetProveTimeout() time.Duration {
	return parseDuration(c.ProveTimeout)
}

// GetSubmitTimeout parses the submission timeout, defaulting to 5 minutes.
func (c *Config) GetSubmitTimeout() time.Duration {
	if d := parseDuration(c.Submit.Timeout); d > 0 {
		return d
	}
	return 5 * time.Minute
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.HomeDir == "" {
		return fmt.Errorf("home_dir must not be empty")
	}
	if c.ProofDataDir == "" {
		return fmt.Errorf("proof_data_dir must not be empty")
	}
	return nil
}
