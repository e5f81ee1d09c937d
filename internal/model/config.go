package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// SourceConfig holds the configuration for a single message source.
type SourceConfig struct {
	// ID is the unique identifier for this source instance.
	ID string `mapstructure:"id" yaml:"id"`

	// Type identifies the source kind ("email" for .eml directories,
	// "json" for JSON/JSON-lines message dumps).
	Type string `mapstructure:"type" yaml:"type"`

	// Name is the user-defined label for this source instance.
	Name string `mapstructure:"name" yaml:"name"`

	// Path is the directory or file the source reads from.
	Path string `mapstructure:"path" yaml:"path"`

	// Enabled controls whether this source is read during sync.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Config holds source-specific key-value settings.
	Config map[string]string `mapstructure:"config" yaml:"config"`
}

// ExtractionConfig tunes task detection.
type ExtractionConfig struct {
	TaskThreshold     float64  `mapstructure:"task_threshold" yaml:"task_threshold"`
	ExtraTaskKeywords []string `mapstructure:"extra_task_keywords" yaml:"extra_task_keywords"`
	ExtraUrgencyWords []string `mapstructure:"extra_urgency_words" yaml:"extra_urgency_words"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SyncConfig controls the polling loop.
type SyncConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Sources    []SourceConfig   `mapstructure:"sources" yaml:"sources"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Sync       SyncConfig       `mapstructure:"sync" yaml:"sync"`
}

const (
	defaultTaskThreshold = 0.3
	defaultSyncInterval  = 300
)

// configDir returns ~/.config/mailtasks, or the working directory when the
// home directory cannot be determined.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailtasks")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtasks/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultStorePath returns the default SQLite database location.
func DefaultStorePath() string {
	return filepath.Join(configDir(), "mailtasks.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Sources: []SourceConfig{},
		Extraction: ExtractionConfig{
			TaskThreshold: defaultTaskThreshold,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Sync: SyncConfig{
			IntervalSec: defaultSyncInterval,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// MAILTASKS_* environment variables override file values (for example
// MAILTASKS_LOG_LEVEL). If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("mailtasks")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("extraction.task_threshold", defaultTaskThreshold)
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("sync.interval_sec", defaultSyncInterval)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Extraction.TaskThreshold <= 0 {
		cfg.Extraction.TaskThreshold = defaultTaskThreshold
	}
	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = defaultSyncInterval
	}

	// Viper unmarshals a missing bool as false; an unset "enabled" means on.
	rawSources, _ := v.Get("sources").([]any)
	for i := range cfg.Sources {
		if cfg.Sources[i].ID == "" {
			cfg.Sources[i].ID = fmt.Sprintf("%s-%d", cfg.Sources[i].Type, i)
		}
		if i < len(rawSources) {
			if raw, ok := rawSources[i].(map[string]any); ok {
				if _, set := raw["enabled"]; !set {
					cfg.Sources[i].Enabled = true
				}
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sources", cfg.Sources)
	v.Set("extraction", cfg.Extraction)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)
	v.Set("sync", cfg.Sync)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
