// Package config loads depscope settings from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".depscope"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for depscope settings.
const envPrefix = "DEPSCOPE"

// Defaults applied when neither file nor environment set a value.
const (
	DefaultMaxNodes    = 4096
	DefaultMaxFileSize = 1_000_000 // 1 MB
)

// Config is the top-level configuration struct for depscope.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Workers       int      `mapstructure:"workers"`        // 0 = GOMAXPROCS
	MaxNodes      int      `mapstructure:"max_nodes"`      // 0 = unbounded
	MaxFileSize   int64    `mapstructure:"max_file_size"`  // bytes, 0 = unbounded
	SourceRoots   []string `mapstructure:"source_roots"`   // extra root-like dirs for package-style imports
	DisabledRules []string `mapstructure:"disabled_rules"` // catalog rule ids to skip
	NoColor       bool     `mapstructure:"no_color"`
}

// Validate checks for nonsensical values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	if c.MaxNodes < 0 {
		return errors.New("max_nodes must be >= 0")
	}
	if c.MaxFileSize < 0 {
		return errors.New("max_file_size must be >= 0")
	}
	return nil
}

// Load reads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file
// path; otherwise the config file is searched in CWD and $HOME.
// A missing file on the search path is not an error; an explicitly
// named file that cannot be read is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", 0)
	v.SetDefault("max_nodes", DefaultMaxNodes)
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("source_roots", []string{})
	v.SetDefault("disabled_rules", []string{})
	v.SetDefault("no_color", false)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
