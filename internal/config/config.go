// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".autodev"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// DefaultGraphDir is the default graph database directory, relative to the
	// workspace root.
	DefaultGraphDir = ".autodev/graph"
)

// Config holds all configuration for the topology extractor.
type Config struct {
	// Project contains project metadata.
	Project ProjectConfig `mapstructure:"project" yaml:"project"`
	// Workspaces lists the Next.js workspaces to scan.
	Workspaces []WorkspaceConfig `mapstructure:"workspaces" yaml:"workspaces"`
	// Watch contains file watching configuration.
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
	// Graph contains graph storage configuration.
	Graph GraphConfig `mapstructure:"graph" yaml:"graph"`
	// Index contains scan configuration.
	Index IndexConfig `mapstructure:"index" yaml:"index"`
	// Explain contains LLM configuration for the explain command.
	Explain ExplainConfig `mapstructure:"explain" yaml:"explain"`
}

// ProjectConfig holds project metadata.
type ProjectConfig struct {
	// Name is the project name.
	Name string `mapstructure:"name" yaml:"name"`
}

// WorkspaceConfig describes one workspace to scan.
type WorkspaceConfig struct {
	// Path is the filesystem path to the workspace root.
	Path string `mapstructure:"path" yaml:"path"`
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Exclude lists glob patterns to exclude from scanning and watching.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// DebounceMs is the debounce window for change events in milliseconds.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// GraphConfig holds graph storage configuration.
type GraphConfig struct {
	// Storage is the storage backend; only "embedded" is supported.
	Storage string `mapstructure:"storage" yaml:"storage"`
	// Path is the graph database directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// IndexConfig holds scan configuration.
type IndexConfig struct {
	// Workers is the number of parallel file analyses during a full scan.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// ExplainConfig holds LLM configuration for topology explanations.
type ExplainConfig struct {
	// Provider is the LLM provider (anthropic or vertex-ai).
	Provider string `mapstructure:"provider" yaml:"provider"`
	// Model is the model identifier.
	Model string `mapstructure:"model" yaml:"model"`
	// Project is the GCP project ID (used when Provider is "vertex-ai").
	Project string `mapstructure:"project" yaml:"project,omitempty"`
	// Location is the GCP region (used when Provider is "vertex-ai").
	Location string `mapstructure:"location" yaml:"location,omitempty"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// A specific config file may be set via CLI flag (stored in global viper).
	if configFile := viper.GetViper().GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTODEV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Workspaces) == 0 {
		return fmt.Errorf("at least one workspace must be configured")
	}
	for i, ws := range c.Workspaces {
		if ws.Path == "" {
			return fmt.Errorf("workspace %d: path is required", i)
		}
	}
	if c.Graph.Storage != "" && c.Graph.Storage != "embedded" {
		return fmt.Errorf("graph storage must be 'embedded', got %q", c.Graph.Storage)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch debounce_ms must not be negative")
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index workers must not be negative")
	}
	if c.Explain.Provider != "" && c.Explain.Provider != "anthropic" && c.Explain.Provider != "vertex-ai" {
		return fmt.Errorf("explain provider must be 'anthropic' or 'vertex-ai', got %q", c.Explain.Provider)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "")

	v.SetDefault("watch.exclude", []string{
		"node_modules",
		".git",
		".next",
		"dist",
		"build",
		"coverage",
	})
	v.SetDefault("watch.debounce_ms", 100)

	v.SetDefault("graph.storage", "embedded")
	v.SetDefault("graph.path", DefaultGraphDir)

	v.SetDefault("index.workers", 4)

	v.SetDefault("explain.provider", "anthropic")
	v.SetDefault("explain.model", "claude-sonnet-4-5-20250929")
}
