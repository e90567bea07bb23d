package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"promptchat/chat"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvProvider, EnvEndpoint, EnvModel, EnvAPIKey, EnvFamily, EnvMaxHist} {
		t.Setenv(key, "")
	}
}

func TestTemplateMatchesDefaults(t *testing.T) {
	path := writeConfig(t, GenerateConfigTemplate())

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	want := DefaultConfig()

	if got.Server != want.Server {
		t.Errorf("server = %+v, want %+v", got.Server, want.Server)
	}
	if got.Prompt != want.Prompt {
		t.Errorf("prompt = %+v, want %+v", got.Prompt, want.Prompt)
	}
	if got.Chat.MaxHistory != want.Chat.MaxHistory || got.Chat.MaxToken != want.Chat.MaxToken {
		t.Errorf("chat = %+v, want %+v", got.Chat, want.Chat)
	}
	if got.TimeoutDuration() != chat.DefaultTimeout {
		t.Errorf("timeout = %v, want %v", got.TimeoutDuration(), chat.DefaultTimeout)
	}
	if !got.Stream.SkipLeadingNewlines {
		t.Error("skip_leading_newlines should default to true")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
model = "gemma2:9b"

[chat]
max_history = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Model != "gemma2:9b" {
		t.Errorf("model = %q", cfg.Server.Model)
	}
	if cfg.Server.Endpoint != "http://localhost:11434" {
		t.Errorf("endpoint default lost: %q", cfg.Server.Endpoint)
	}
	if cfg.Chat.MaxHistory != 0 {
		t.Errorf("explicit max_history = 0 not honored: %d", cfg.Chat.MaxHistory)
	}
	if cfg.Chat.MaxToken != chat.DefaultMaxToken {
		t.Errorf("max_token default lost: %d", cfg.Chat.MaxToken)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
provider = "ollama"
model = "llama3.1:8b"
`)
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvEndpoint, "http://gpu:8080/v1")
	t.Setenv(EnvModel, "gemma-2-9b-it")
	t.Setenv(EnvFamily, "gemma2")
	t.Setenv(EnvMaxHist, "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Provider != "openai" || cfg.Server.Endpoint != "http://gpu:8080/v1" || cfg.Server.Model != "gemma-2-9b-it" {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Prompt.Family != "gemma2" {
		t.Errorf("family = %q", cfg.Prompt.Family)
	}
	if cfg.Chat.MaxHistory != 12 {
		t.Errorf("max_history = %d", cfg.Chat.MaxHistory)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")
	t.Setenv(EnvMaxHist, "lots")

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), EnvMaxHist) {
		t.Errorf("Load() error = %v, want a %s parse error", err, EnvMaxHist)
	}
}

func TestLoadDoesNotValidate(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[prompt]
style = "multiuser"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "character_name") {
		t.Errorf("Validate() error = %v, want missing character", err)
	}

	cfg.Prompt.CharacterName = "Mio"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error: %v", err)
	}
}

func TestStyle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prompt.Style = "multiuser"
	if style, err := cfg.Style(); err != nil || style != chat.StyleMultiUser {
		t.Errorf("Style() = %v, %v", style, err)
	}

	cfg.Prompt.Style = "chorus"
	if _, err := cfg.Style(); err == nil {
		t.Error("Style() should reject an unknown style")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative history", func(c *Config) { c.Chat.MaxHistory = -1 }, "max_history"},
		{"zero max token", func(c *Config) { c.Chat.MaxToken = 0 }, "max_token"},
		{"bad timeout", func(c *Config) { c.Chat.Timeout = "soon" }, "timeout"},
		{"bad family", func(c *Config) { c.Prompt.Family = "mistral" }, "family"},
		{"bad style", func(c *Config) { c.Prompt.Style = "group" }, "style"},
		{"multiuser without character", func(c *Config) { c.Prompt.Style = "multiuser" }, "character_name"},
		{"multiuser with character", func(c *Config) {
			c.Prompt.Style = "multiuser"
			c.Prompt.CharacterName = "Mio"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Model = "gemma2:27b"
	cfg.Chat.Timeout = (90 * time.Second).String()

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got.Server.Model != "gemma2:27b" || got.TimeoutDuration() != 90*time.Second {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestCreateDefaultConfigKeepsExisting(t *testing.T) {
	path := writeConfig(t, "[server]\nmodel = \"mine\"\n")

	if err := CreateDefaultConfig(path); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "mine") {
		t.Error("CreateDefaultConfig overwrote an existing file")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("PC_TEST_DIR", "/data")

	tests := []struct{ in, want string }{
		{"", ""},
		{"~/notes", "/home/tester/notes"},
		{"$PC_TEST_DIR/x/../y", "/data/y"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
