// Package config loads and validates the hookchat configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Webhook   WebhookConfig `json:"webhook"`
	Breaker   BreakerConfig `json:"breaker"`
	LogLevel  string        `json:"log_level"`
	LogFormat string        `json:"log_format"`
	LogFile   string        `json:"log_file"`
}

// WebhookConfig holds the chat webhook configuration
type WebhookConfig struct {
	// Endpoint is the webhook URL chat turns are posted to.
	Endpoint string `json:"endpoint"`
	// Mode is "text" (cumulative body) or "events" (newline-delimited JSON).
	Mode string `json:"mode"`
	// Headers are added to every request, e.g. an Authorization header.
	Headers map[string]string `json:"headers"`
	// ExtraBody fields are merged into every text-mode payload.
	ExtraBody map[string]any `json:"extra_body"`
	// APITimeoutSeconds bounds the whole exchange. 0 disables the client
	// timeout so long-running streams are not cut off.
	APITimeoutSeconds int `json:"api_timeout_seconds"`
}

// BreakerConfig holds circuit breaker settings for the webhook
type BreakerConfig struct {
	Enabled         bool   `json:"enabled"`
	MaxFailures     uint32 `json:"max_failures"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		Webhook: WebhookConfig{
			Endpoint:          "",
			Mode:              "text",
			Headers:           map[string]string{},
			ExtraBody:         map[string]any{},
			APITimeoutSeconds: 0,
		},
		Breaker: BreakerConfig{
			Enabled:         false,
			MaxFailures:     5,
			TimeoutSeconds:  30,
			IntervalSeconds: 60,
		},
		LogLevel:  "info",
		LogFormat: "json",
		LogFile:   "",
	}
}

// Load loads configuration from the specified path
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.Webhook.Endpoint == "" {
		return fmt.Errorf("webhook endpoint is required (set in config file)")
	}

	if c.Webhook.Mode != "text" && c.Webhook.Mode != "events" {
		return fmt.Errorf("webhook mode must be \"text\" or \"events\", got: %q", c.Webhook.Mode)
	}

	if c.Webhook.APITimeoutSeconds < 0 {
		return fmt.Errorf("api_timeout_seconds must not be negative, got: %d", c.Webhook.APITimeoutSeconds)
	}

	if c.Breaker.Enabled {
		if c.Breaker.TimeoutSeconds <= 0 {
			return fmt.Errorf("breaker timeout_seconds must be positive, got: %d", c.Breaker.TimeoutSeconds)
		}
		if c.Breaker.IntervalSeconds <= 0 {
			return fmt.Errorf("breaker interval_seconds must be positive, got: %d", c.Breaker.IntervalSeconds)
		}
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hookchat/config.json"
	}
	return filepath.Join(homeDir, ".hookchat", "config.json")
}
