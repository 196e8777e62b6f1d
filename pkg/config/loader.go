package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = ".amdshake"
	configType = "yaml"

	// envPrefix makes treeshake.strip_use_strict readable from
	// AMDSHAKE_TREESHAKE_STRIP_USE_STRICT.
	envPrefix = "AMDSHAKE"
)

// LoadConfig reads configPath, or .amdshake.yaml from the working directory
// and then $HOME when configPath is empty, layered over AMDSHAKE_* variables
// and the defaults. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env var is set.
func Default() *Config {
	return &Config{
		Shrink: ShrinkConfig{
			Strategy:   DefaultShrinkStrategy,
			Provenance: DefaultShrinkProvenance,
		},
		Treeshake: TreeshakeConfig{
			Keep:            []string{},
			Remove:          []string{},
			MergeDuplicates: DefaultTreeshakeMergeDuplicates,
			StripUseStrict:  DefaultTreeshakeStripUseStrict,
			Provenance:      DefaultTreeshakeProvenance,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
			JSON:  DefaultLogJSON,
		},
		MCP: MCPConfig{
			MaxBundleBytes: DefaultMCPMaxBundleBytes,
		},
	}
}

// defaultValues mirrors Default() keyed by viper path.
func defaultValues() map[string]any {
	return map[string]any{
		"shrink.strategy":            DefaultShrinkStrategy,
		"shrink.provenance":          DefaultShrinkProvenance,
		"treeshake.keep":             []string{},
		"treeshake.remove":           []string{},
		"treeshake.compare":          "",
		"treeshake.manifest":         "",
		"treeshake.merge_duplicates": DefaultTreeshakeMergeDuplicates,
		"treeshake.strip_use_strict": DefaultTreeshakeStripUseStrict,
		"treeshake.provenance":       DefaultTreeshakeProvenance,
		"logging.level":              DefaultLogLevel,
		"logging.json":               DefaultLogJSON,
		"mcp.max_bundle_bytes":       DefaultMCPMaxBundleBytes,
	}
}

func applyDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}
