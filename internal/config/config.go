// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.roteirista/config.yaml)
//  3. Default values
//
// Configuration categories:
//   - Telegram: bot token for the chat transport
//   - Notion: integration token and parent database id for script storage
//   - Groq: API key, model identifier and max tokens for script generation
//   - Sessions: in-memory session capacity
//
// Security: tokens are never logged; MarshalJSON/String mask sensitive fields.
// Validation: fail-fast at startup with sentinel errors checked via errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingTelegramToken indicates the Telegram bot token is not set.
	ErrMissingTelegramToken = errors.New("missing Telegram token")

	// ErrMissingNotionToken indicates the Notion integration token is not set.
	ErrMissingNotionToken = errors.New("missing Notion token")

	// ErrMissingNotionDatabase indicates the Notion parent database id is not set.
	ErrMissingNotionDatabase = errors.New("missing Notion database id")

	// ErrMissingGroqAPIKey indicates the Groq API key is not set.
	ErrMissingGroqAPIKey = errors.New("missing Groq API key")

	// ErrInvalidModelName indicates the model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidSessionCapacity indicates the session capacity is out of range.
	ErrInvalidSessionCapacity = errors.New("invalid session capacity")
)

const (
	// DefaultModel is the default Groq model identifier.
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultMaxTokens caps the length of a generated script.
	DefaultMaxTokens = 3000

	// MaxAllowedTokens is the upper bound accepted for max_tokens.
	MaxAllowedTokens = 32768

	// DefaultSessionCapacity bounds the in-memory session store.
	DefaultSessionCapacity = 1024
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (tokens, API keys), update MarshalJSON.
type Config struct {
	// Chat transport
	TelegramToken string `mapstructure:"telegram_token" json:"telegram_token"` // SENSITIVE: masked in MarshalJSON

	// Document store
	NotionToken      string `mapstructure:"notion_token" json:"notion_token"` // SENSITIVE: masked in MarshalJSON
	NotionDatabaseID string `mapstructure:"notion_database_id" json:"notion_database_id"`

	// Generation provider
	GroqAPIKey string `mapstructure:"groq_api_key" json:"groq_api_key"` // SENSITIVE: masked in MarshalJSON
	GroqModel  string `mapstructure:"groq_model" json:"groq_model"`
	MaxTokens  int    `mapstructure:"max_tokens" json:"max_tokens"`

	// Session store
	SessionCapacity int `mapstructure:"session_capacity" json:"session_capacity"`

	// Logging
	LogJSON bool `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".roteirista")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CRITICAL: validate immediately (fail-fast); a missing credential must
	// abort startup, never surface mid-conversation.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("groq_model", DefaultModel)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("session_capacity", DefaultSessionCapacity)
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variables explicitly.
// The env names match the original deployment's .env file, so existing
// deployments keep working.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("telegram_token", "TELEGRAM_TOKEN")
	mustBind("notion_token", "NOTION_TOKEN")
	mustBind("notion_database_id", "PARENT_DATABASE_ID")
	mustBind("groq_api_key", "GROQ_API_KEY")
	mustBind("groq_model", "GROQ_MODEL")
	mustBind("log_json", "ROTEIRISTA_LOG_JSON")
}

// Validate checks the configuration for startup.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("%w: set TELEGRAM_TOKEN", ErrMissingTelegramToken)
	}
	if c.NotionToken == "" {
		return fmt.Errorf("%w: set NOTION_TOKEN", ErrMissingNotionToken)
	}
	if c.NotionDatabaseID == "" {
		return fmt.Errorf("%w: set PARENT_DATABASE_ID", ErrMissingNotionDatabase)
	}
	if c.GroqAPIKey == "" {
		return fmt.Errorf("%w: set GROQ_API_KEY", ErrMissingGroqAPIKey)
	}
	if c.GroqModel == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}
	if c.MaxTokens < 1 || c.MaxTokens > MaxAllowedTokens {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidMaxTokens, c.MaxTokens, MaxAllowedTokens)
	}
	if c.SessionCapacity < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidSessionCapacity, c.SessionCapacity)
	}
	return nil
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid substring matching against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 bytes or fewer are fully masked to prevent substring
// matching; longer secrets show the first and last 2 characters.
//
// THREAT MODEL: this defends against accidental logging of real secrets.
// If logs are compromised, rotate the tokens.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked: TelegramToken, NotionToken, GroqAPIKey.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.TelegramToken = maskSecret(a.TelegramToken)
	a.NotionToken = maskSecret(a.NotionToken)
	a.GroqAPIKey = maskSecret(a.GroqAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
