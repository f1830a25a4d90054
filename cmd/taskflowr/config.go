package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflowr/taskflowr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify TaskFlowr configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/taskflowr/config.yaml
Project-specific overrides can be placed in .taskflowr.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("engine.subtask_timeout: %s\n", cfg.Engine.SubtaskTimeout)
	fmt.Printf("engine.max_subtasks: %d\n", cfg.Engine.MaxSubtasks)
	fmt.Printf("session.history_limit: %d\n", cfg.Session.HistoryLimit)
	fmt.Printf("session.db_path: %s\n", orUnset(cfg.Session.DBPath))
	fmt.Printf("tone.default: %s\n", cfg.Tone.Default)
	fmt.Printf("tone.presets_path: %s\n", orUnset(cfg.Tone.PresetsPath))
	fmt.Printf("events.buffer_size: %d\n", cfg.Events.BufferSize)
	fmt.Printf("events.log_path: %s\n", orUnset(cfg.Events.LogPath))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "engine.subtask_timeout":
		return cfg.Engine.SubtaskTimeout.String(), nil
	case "engine.max_subtasks":
		return strconv.Itoa(cfg.Engine.MaxSubtasks), nil
	case "session.history_limit":
		return strconv.Itoa(cfg.Session.HistoryLimit), nil
	case "session.db_path":
		return orUnset(cfg.Session.DBPath), nil
	case "tone.default":
		return cfg.Tone.Default, nil
	case "tone.presets_path":
		return orUnset(cfg.Tone.PresetsPath), nil
	case "events.buffer_size":
		return strconv.Itoa(cfg.Events.BufferSize), nil
	case "events.log_path":
		return orUnset(cfg.Events.LogPath), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "engine.subtask_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for subtask_timeout: %w", err)
		}
		cfg.Engine.SubtaskTimeout = d
	case "engine.max_subtasks":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_subtasks: %w", err)
		}
		cfg.Engine.MaxSubtasks = n
	case "session.history_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for history_limit: %w", err)
		}
		cfg.Session.HistoryLimit = n
	case "session.db_path":
		cfg.Session.DBPath = value
	case "tone.default":
		cfg.Tone.Default = value
	case "tone.presets_path":
		cfg.Tone.PresetsPath = value
	case "events.buffer_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for buffer_size: %w", err)
		}
		cfg.Events.BufferSize = n
	case "events.log_path":
		cfg.Events.LogPath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
