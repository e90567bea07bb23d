package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"promptchat/chat"
)

// FamilyAuto asks the provider package to detect the grammar from the
// model name.
const FamilyAuto = "auto"

type ServerConfig struct {
	Provider string `toml:"provider"`
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key,omitempty"`
}

type PromptConfig struct {
	Family        string `toml:"family"`
	Style         string `toml:"style"`
	CharacterName string `toml:"character_name,omitempty"`
	SystemMessage string `toml:"system_message,omitempty"`
}

type ChatConfig struct {
	MaxHistory  int      `toml:"max_history"`
	MaxToken    int      `toml:"max_token"`
	Timeout     string   `toml:"timeout"`
	Temperature *float64 `toml:"temperature,omitempty"`
	Stop        []string `toml:"stop,omitempty"`
}

type StreamConfig struct {
	SkipLeadingNewlines bool `toml:"skip_leading_newlines"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Prompt PromptConfig `toml:"prompt"`
	Chat   ChatConfig   `toml:"chat"`
	Stream StreamConfig `toml:"stream"`
}

// Environment variables that override the config file.
const (
	EnvProvider = "PROMPTCHAT_PROVIDER"
	EnvEndpoint = "PROMPTCHAT_ENDPOINT"
	EnvModel    = "PROMPTCHAT_MODEL"
	EnvAPIKey   = "PROMPTCHAT_API_KEY"
	EnvFamily   = "PROMPTCHAT_FAMILY"
	EnvMaxHist  = "PROMPTCHAT_MAX_HISTORY"
)

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvProvider); v != "" {
		c.Server.Provider = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Server.Endpoint = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Server.Model = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv(EnvFamily); v != "" {
		c.Prompt.Family = v
	}
	if v := os.Getenv(EnvMaxHist); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxHist, err)
		}
		c.Chat.MaxHistory = n
	}
	return nil
}

// TimeoutDuration returns the per-generation timeout, falling back to the
// chat package default when unset.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Chat.Timeout)
	if err != nil || d <= 0 {
		return chat.DefaultTimeout
	}
	return d
}

// Style returns the parsed prompt style.
func (c *Config) Style() (chat.Style, error) {
	return chat.ParseStyle(c.Prompt.Style)
}

// Validate rejects values that would produce a broken session.
func (c *Config) Validate() error {
	if c.Chat.MaxHistory < 0 {
		return fmt.Errorf("chat.max_history must be >= 0, got %d", c.Chat.MaxHistory)
	}
	if c.Chat.MaxToken <= 0 {
		return fmt.Errorf("chat.max_token must be > 0, got %d", c.Chat.MaxToken)
	}
	if c.Chat.Timeout != "" {
		if _, err := time.ParseDuration(c.Chat.Timeout); err != nil {
			return fmt.Errorf("invalid chat.timeout: %w", err)
		}
	}
	if c.Prompt.Family != "" && c.Prompt.Family != FamilyAuto {
		if _, err := chat.ParseFamily(c.Prompt.Family); err != nil {
			return err
		}
	}
	style, err := chat.ParseStyle(c.Prompt.Style)
	if err != nil {
		return err
	}
	if style == chat.StyleMultiUser && c.Prompt.CharacterName == "" {
		return fmt.Errorf("prompt.character_name is required for the multiuser style")
	}
	return nil
}

// Load builds the configuration from, in increasing precedence: defaults,
// the TOML file at path (created from the template if missing), a .env file
// in the working directory, and PROMPTCHAT_* environment variables.
//
// An empty path means the default location under GetConfigDir. The result
// is not validated; callers layer their own overrides and call Validate.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if path == "" {
		path = GetConfigFilePath()
		if !FileExists(path) {
			if err := CreateDefaultConfig(path); err != nil {
				return nil, fmt.Errorf("failed to create config: %w", err)
			}
		}
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}
