// Package config loads the processing configuration shared by the command
// line tools. Fields omitted from the YAML file keep their defaults, so
// partial configs are safe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coastal-data/bathyscan/internal/refraction"
	"github.com/coastal-data/bathyscan/internal/tiling"
)

// Config is the root configuration.
type Config struct {
	Refraction RefractionConfig `yaml:"refraction,omitempty"`
	Toolchain  ToolchainConfig  `yaml:"toolchain,omitempty"`
	Tiling     TilingConfig     `yaml:"tiling,omitempty"`
	Cluster    ClusterConfig    `yaml:"cluster,omitempty"`
	Database   DatabaseConfig   `yaml:"database,omitempty"`
}

// RefractionConfig holds the water-column parameters.
type RefractionConfig struct {
	// Index is the water refractive index. Zero means the seawater
	// default.
	Index float64 `yaml:"index,omitempty"`
}

// ToolchainConfig names the external point-cloud tools.
type ToolchainConfig struct {
	TileCommand  string `yaml:"tile_command,omitempty"`
	MergeCommand string `yaml:"merge_command,omitempty"`

	// Timeout is a duration string like "10m". Empty means no timeout.
	Timeout string `yaml:"timeout,omitempty"`
}

// TilingConfig holds the flightline-reconstruction parameters.
type TilingConfig struct {
	Workers        int    `yaml:"workers,omitempty"`
	OutputTemplate string `yaml:"output_template,omitempty"`
	StripBuffer    bool   `yaml:"strip_buffer,omitempty"`
	Extension      string `yaml:"extension,omitempty"`
}

// ClusterConfig holds the DBSCAN parameters.
type ClusterConfig struct {
	Eps       float64 `yaml:"eps,omitempty"`
	MinPoints int     `yaml:"min_points,omitempty"`
}

// DatabaseConfig holds the survey index location.
type DatabaseConfig struct {
	// Path to the SQLite survey database. Empty disables run recording.
	Path string `yaml:"path,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFromFile reads and validates a YAML configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Refraction.Index == 0 {
		c.Refraction.Index = refraction.DefaultIndex
	}
	if c.Toolchain.TileCommand == "" {
		c.Toolchain.TileCommand = tiling.DefaultTileCommand
	}
	if c.Toolchain.MergeCommand == "" {
		c.Toolchain.MergeCommand = tiling.DefaultMergeCommand
	}
	if c.Tiling.Workers == 0 {
		c.Tiling.Workers = tiling.DefaultWorkers
	}
	if c.Tiling.OutputTemplate == "" {
		c.Tiling.OutputTemplate = "line_XX.laz"
	}
	if c.Tiling.Extension == "" {
		c.Tiling.Extension = tiling.DefaultExtension
	}
	if c.Cluster.Eps == 0 {
		c.Cluster.Eps = 1.0
	}
	if c.Cluster.MinPoints == 0 {
		c.Cluster.MinPoints = 5
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Refraction.Index < 1 {
		return fmt.Errorf("refraction index must be at least 1, got %g", c.Refraction.Index)
	}
	if c.Toolchain.Timeout != "" {
		if _, err := time.ParseDuration(c.Toolchain.Timeout); err != nil {
			return fmt.Errorf("invalid toolchain timeout %q: %w", c.Toolchain.Timeout, err)
		}
	}
	if c.Tiling.Workers < 0 {
		return fmt.Errorf("tiling workers must be non-negative, got %d", c.Tiling.Workers)
	}
	if c.Cluster.Eps < 0 {
		return fmt.Errorf("cluster eps must be non-negative, got %g", c.Cluster.Eps)
	}
	return nil
}

// ToolchainTimeout parses the toolchain timeout. Empty means zero.
func (c *Config) ToolchainTimeout() time.Duration {
	if c.Toolchain.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Toolchain.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// NewToolchain builds the external toolchain from the configuration.
func (c *Config) NewToolchain() *tiling.ExecToolchain {
	t := tiling.NewExecToolchain(c.ToolchainTimeout())
	t.TileCommand = c.Toolchain.TileCommand
	t.MergeCommand = c.Toolchain.MergeCommand
	return t
}
