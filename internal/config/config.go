// Package config loads the stratvault configuration file and applies
// defaults so the tool runs with no config present at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxSnapshots caps retained snapshots per tracked file.
const DefaultMaxSnapshots = 50

// DefaultMaxAgeDays is the default threshold for the manual purge.
const DefaultMaxAgeDays = 30

// Config represents the complete stratvault configuration.
type Config struct {
	// VaultDir is the directory holding snapshots, sidecars, version
	// records, and diff artifacts.
	VaultDir string `yaml:"vault_dir"`

	// ChangelogPath is the reverse-chronological log document. Empty means
	// <vault_dir>/CHANGELOG.md.
	ChangelogPath string `yaml:"changelog"`

	Retention RetentionConfig `yaml:"retention"`
	Tracking  TrackingConfig  `yaml:"tracking"`
}

// RetentionConfig configures snapshot garbage collection.
type RetentionConfig struct {
	MaxSnapshotsPerFile int `yaml:"max_snapshots_per_file"`
	MaxAgeDays          int `yaml:"max_age_days"`
}

// TrackingConfig configures which file paths are eligible for snapshotting.
// Globs match the path base name or the full slash path; keywords match as
// substrings anywhere in the path. The rule set is data, not logic.
type TrackingConfig struct {
	Globs    []string `yaml:"globs"`
	Keywords []string `yaml:"keywords"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VaultDir: ".stratvault",
		Retention: RetentionConfig{
			MaxSnapshotsPerFile: DefaultMaxSnapshots,
			MaxAgeDays:          DefaultMaxAgeDays,
		},
		Tracking: TrackingConfig{
			Globs:    []string{"strategy/*.py", "config/*.yaml", "config/*.yml", "*.cfg"},
			Keywords: []string{"indicator", "signal", "backtest", "strategy", "config"},
		},
	}
}

// Load reads the YAML config at path. A missing file yields Default();
// a malformed file is an error rather than a silent fallback.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.VaultDir == "" {
		c.VaultDir = ".stratvault"
	}
	if c.Retention.MaxSnapshotsPerFile == 0 {
		c.Retention.MaxSnapshotsPerFile = DefaultMaxSnapshots
	}
	if c.Retention.MaxAgeDays == 0 {
		c.Retention.MaxAgeDays = DefaultMaxAgeDays
	}
}

func (c *Config) validate() error {
	if c.Retention.MaxSnapshotsPerFile < 1 {
		return fmt.Errorf("retention.max_snapshots_per_file must be >= 1, got %d", c.Retention.MaxSnapshotsPerFile)
	}
	if c.Retention.MaxAgeDays < 1 {
		return fmt.Errorf("retention.max_age_days must be >= 1, got %d", c.Retention.MaxAgeDays)
	}
	return nil
}

// Changelog resolves the changelog location, defaulting into the vault.
func (c *Config) Changelog() string {
	if c.ChangelogPath != "" {
		return c.ChangelogPath
	}
	return filepath.Join(c.VaultDir, "CHANGELOG.md")
}
