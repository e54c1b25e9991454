// Package config handles configuration loading for chatwidget.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/diogo/chatwidget/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"CHATWIDGET_MARKDOWN_STYLE"` // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines"`
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the base URL of the chat backend; /chat is appended.
	Endpoint       string `json:"endpoint" env:"CHATWIDGET_ENDPOINT"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"CHATWIDGET_TIMEOUT"`
	// SessionID is sent with every message. Empty means one is generated per run.
	SessionID string `json:"session_id,omitempty" env:"CHATWIDGET_SESSION_ID"`
	// MaxInFlight bounds how many requests may be pending at once.
	MaxInFlight     int            `json:"max_in_flight" env:"CHATWIDGET_MAX_IN_FLIGHT"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"CHATWIDGET_THEME"`
	LogLevel        string         `json:"log_level,omitempty" env:"CHATWIDGET_LOG_LEVEL"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"CHATWIDGET_COPY"`
	Markdown        MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:       models.DefaultEndpoint,
		TimeoutSeconds: 60,
		MaxInFlight:    1,
		TUITheme:       "tokyonight",
		LogLevel:       "info",
		Markdown:       DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks values that would otherwise fail later at request time
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxInFlight < 1 {
		return fmt.Errorf("max_in_flight must be at least 1, got %d", c.MaxInFlight)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatwidget"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the log file used by the interactive UI
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "chatwidget.log"), nil
}

// LoadFile loads only the on-disk configuration, without environment overrides.
// Used by `config set` so that env values never leak into the saved file.
func LoadFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads the configuration from disk, then applies .env and
// environment overrides. Variables already set in the environment win over .env.
func LoadConfig() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys lists the settable configuration keys
func Keys() []string {
	return []string{
		"endpoint",
		"timeout_seconds",
		"session_id",
		"max_in_flight",
		"tui_theme",
		"log_level",
		"copy_to_clipboard",
		"markdown.style",
		"markdown.enable_emoji",
		"markdown.preserve_newlines",
	}
}

// Set assigns a string value to the named key, converting as needed
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "endpoint":
		c.Endpoint = strings.TrimRight(value, "/")
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout_seconds: %w", err)
		}
		c.TimeoutSeconds = n
	case "session_id":
		c.SessionID = value
	case "max_in_flight":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_in_flight: %w", err)
		}
		c.MaxInFlight = n
	case "tui_theme":
		c.TUITheme = value
	case "log_level":
		c.LogLevel = value
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard: %w", err)
		}
		c.CopyToClipboard = b
	case "markdown.style":
		c.Markdown.Style = value
	case "markdown.enable_emoji":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("markdown.enable_emoji: %w", err)
		}
		c.Markdown.EnableEmoji = b
	case "markdown.preserve_newlines":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("markdown.preserve_newlines: %w", err)
		}
		c.Markdown.PreserveNewLines = b
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return c.Validate()
}
