// Package config handles configuration loading and management for TaskFlowr.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for TaskFlowr.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Session   SessionConfig   `mapstructure:"session"`
	Tone      ToneConfig      `mapstructure:"tone"`
	Events    EventsConfig    `mapstructure:"events"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier passed to the SDK.
	Model string `mapstructure:"model"`
	// UseAWSBedrock switches the client to AWS Bedrock credentials.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region, if Bedrock is enabled.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is an optional AWS shared-config profile name.
	AWSProfile string `mapstructure:"aws_profile"`
}

// EngineConfig holds orchestration settings.
type EngineConfig struct {
	// SubtaskTimeout is the per-subtask deadline enforced by the executor.
	SubtaskTimeout time.Duration `mapstructure:"subtask_timeout"`
	// MaxSubtasks caps how many subtasks a single decomposition may produce.
	MaxSubtasks int `mapstructure:"max_subtasks"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	// HistoryLimit is the number of prior deliverable summaries retained.
	HistoryLimit int `mapstructure:"history_limit"`
	// DBPath overrides the default session database location.
	DBPath string `mapstructure:"db_path"`
}

// ToneConfig holds natural-language tone settings.
type ToneConfig struct {
	// Default is the tone used when a session has no preference.
	Default string `mapstructure:"default"`
	// PresetsPath points at a YAML file with additional tone presets.
	PresetsPath string `mapstructure:"presets_path"`
}

// EventsConfig holds observability settings.
type EventsConfig struct {
	// BufferSize is the event channel capacity.
	BufferSize int `mapstructure:"buffer_size"`
	// LogPath is the JSONL event log location. Empty disables the file sink.
	LogPath string `mapstructure:"log_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.taskflowr.yaml in current directory or parent)
// 3. User config (~/.config/taskflowr/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("engine.subtask_timeout", cfg.Engine.SubtaskTimeout.String())
	v.Set("engine.max_subtasks", cfg.Engine.MaxSubtasks)
	v.Set("session.history_limit", cfg.Session.HistoryLimit)
	v.Set("session.db_path", cfg.Session.DBPath)
	v.Set("tone.default", cfg.Tone.Default)
	v.Set("tone.presets_path", cfg.Tone.PresetsPath)
	v.Set("events.buffer_size", cfg.Events.BufferSize)
	v.Set("events.log_path", cfg.Events.LogPath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("engine.subtask_timeout", "45s")
	v.SetDefault("engine.max_subtasks", 12)

	v.SetDefault("session.history_limit", 10)
	v.SetDefault("session.db_path", "")

	v.SetDefault("tone.default", "professional")
	v.SetDefault("tone.presets_path", "")

	v.SetDefault("events.buffer_size", 100)
	v.SetDefault("events.log_path", "")
}

// getUserConfigDir returns the XDG config directory for TaskFlowr.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "taskflowr")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "taskflowr")
	}
	return filepath.Join(home, ".config", "taskflowr")
}

// findProjectConfig searches for .taskflowr.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".taskflowr.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			SubtaskTimeout: 45 * time.Second,
			MaxSubtasks:    12,
		},
		Session: SessionConfig{
			HistoryLimit: 10,
		},
		Tone: ToneConfig{
			Default: "professional",
		},
		Events: EventsConfig{
			BufferSize: 100,
		},
	}
}
