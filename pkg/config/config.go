// Package config loads amdshake settings from .amdshake.yaml, AMDSHAKE_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
)

// Sentinel validation errors.
var (
	// ErrInvalidStrategy indicates shrink.strategy names no known strategy.
	ErrInvalidStrategy = errors.New("shrink.strategy is not a known strategy")
	// ErrInvalidLogLevel indicates logging.level is not a slog level name.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidMaxBundleBytes indicates mcp.max_bundle_bytes is not a positive size.
	ErrInvalidMaxBundleBytes = errors.New("mcp.max_bundle_bytes must be a positive size")
)

// Config holds all amdshake settings.
type Config struct {
	Shrink    ShrinkConfig    `mapstructure:"shrink"`
	Treeshake TreeshakeConfig `mapstructure:"treeshake"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

// ShrinkConfig holds shrink defaults.
type ShrinkConfig struct {
	Strategy   string `mapstructure:"strategy"`
	Provenance bool   `mapstructure:"provenance"`
}

// TreeshakeConfig holds treeshake defaults.
type TreeshakeConfig struct {
	Keep    []string `mapstructure:"keep"`
	Remove  []string `mapstructure:"remove"`
	Compare string   `mapstructure:"compare"`
	// Manifest is a keep/remove manifest merged into Keep and Remove.
	Manifest        string `mapstructure:"manifest"`
	MergeDuplicates bool   `mapstructure:"merge_duplicates"`
	StripUseStrict  bool   `mapstructure:"strip_use_strict"`
	Provenance      bool   `mapstructure:"provenance"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	// MaxBundleBytes is a human-readable size such as "8MiB".
	MaxBundleBytes string `mapstructure:"max_bundle_bytes"`
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	_, err := mangle.StrategyByName(c.Shrink.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.Shrink.Strategy)
	}

	_, err = c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	_, err = c.MCP.MaxBytes()
	if err != nil {
		return err
	}

	return nil
}

// SlogLevel parses Level. An empty level means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
}

// MaxBytes parses MaxBundleBytes.
func (m MCPConfig) MaxBytes() (int64, error) {
	size, err := humanize.ParseBytes(m.MaxBundleBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxBundleBytes, err)
	}

	if size == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxBundleBytes, m.MaxBundleBytes)
	}

	return int64(size), nil
}
