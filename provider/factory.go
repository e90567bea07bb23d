package provider

import (
	"fmt"
	"strings"

	"promptchat/chat"
)

// NewTransport creates a transport based on configuration.
//
// Supported provider types:
//   - ProviderTypeOllama: Ollama server, raw /api/generate
//   - ProviderTypeOpenAI: OpenAI-compatible /v1/completions
//
// Returns an error if the provider type is unknown or the provider-specific
// constructor fails (e.g., invalid URL, missing model).
//
// Example:
//
//	cfg := provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "gemma2:9b",
//	}
//	t, err := provider.NewTransport(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewTransport(cfg Config) (Transport, error) {
	switch cfg.Type {
	case ProviderTypeOllama, "":
		return NewOllamaTransport(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAITransport(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// ParseProviderType converts a configured provider name to a ProviderType.
// "llamacpp", "vllm" and "lmstudio" are served through the
// OpenAI-compatible transport.
func ParseProviderType(name string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ollama":
		return ProviderTypeOllama, nil
	case "openai", "llamacpp", "llama.cpp", "vllm", "lmstudio":
		return ProviderTypeOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider: %q", name)
	}
}

// familyPrefixes is checked in order, most specific first.
var familyPrefixes = []struct {
	prefix string
	family chat.Family
}{
	{"codegemma", chat.FamilyGemma2},
	{"gemma", chat.FamilyGemma2},
	{"llama3", chat.FamilyLlama3},
	{"llama-3", chat.FamilyLlama3},
	{"meta-llama-3", chat.FamilyLlama3},
	{"hermes3", chat.FamilyLlama3},
}

// DetectFamily guesses the prompt grammar from a model name such as
// "llama3.1:8b" or "gemma2:9b-instruct-q4_0". Unknown names return an error
// so the caller can ask for an explicit family instead of sending a prompt
// the model will misread.
func DetectFamily(model string) (chat.Family, error) {
	name := strings.ToLower(model)
	// Drop registry and repository prefixes ("hf.co/org/", "meta-llama/").
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	for _, p := range familyPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.family, nil
		}
	}
	return 0, fmt.Errorf("cannot detect prompt family for model %q; set it explicitly", model)
}
