package provider

import (
	"testing"

	"promptchat/chat"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		expectType  string
	}{
		{
			name:       "ollama provider with defaults",
			config:     Config{Type: ProviderTypeOllama},
			expectType: "*provider.OllamaTransport",
		},
		{
			name:       "empty type falls back to ollama",
			config:     Config{BaseURL: "http://localhost:11434", Model: "gemma2:9b"},
			expectType: "*provider.OllamaTransport",
		},
		{
			name: "openai-compatible provider",
			config: Config{
				Type:    ProviderTypeOpenAI,
				BaseURL: "http://localhost:8080/v1",
				Model:   "llama-3.1-8b-instruct",
			},
			expectType: "*provider.OpenAITransport",
		},
		{
			name:        "openai-compatible provider without model",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: true,
		},
		{
			name:        "invalid ollama url",
			config:      Config{Type: ProviderTypeOllama, BaseURL: "localhost"},
			expectError: true,
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransport(tt.config)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got string
			switch tr.(type) {
			case *OllamaTransport:
				got = "*provider.OllamaTransport"
			case *OpenAITransport:
				got = "*provider.OpenAITransport"
			}
			if got != tt.expectType {
				t.Errorf("NewTransport() type = %s, want %s", got, tt.expectType)
			}
		})
	}
}

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderType
		wantErr bool
	}{
		{"", ProviderTypeOllama, false},
		{"ollama", ProviderTypeOllama, false},
		{" Ollama ", ProviderTypeOllama, false},
		{"openai", ProviderTypeOpenAI, false},
		{"llamacpp", ProviderTypeOpenAI, false},
		{"llama.cpp", ProviderTypeOpenAI, false},
		{"vllm", ProviderTypeOpenAI, false},
		{"lmstudio", ProviderTypeOpenAI, false},
		{"anthropic", "", true},
	}

	for _, tt := range tests {
		got, err := ParseProviderType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProviderType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProviderType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		model   string
		want    chat.Family
		wantErr bool
	}{
		{"llama3.1:8b", chat.FamilyLlama3, false},
		{"llama3.2:latest", chat.FamilyLlama3, false},
		{"Meta-Llama-3.1-8B-Instruct", chat.FamilyLlama3, false},
		{"meta-llama/Llama-3.1-70B-Instruct", chat.FamilyLlama3, false},
		{"hermes3:8b", chat.FamilyLlama3, false},
		{"gemma2:9b", chat.FamilyGemma2, false},
		{"gemma2:27b-instruct-q4_0", chat.FamilyGemma2, false},
		{"hf.co/bartowski/gemma-2-9b-it-GGUF:Q4_K_M", chat.FamilyGemma2, false},
		{"codegemma:7b", chat.FamilyGemma2, false},
		{"mistral:7b", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := DetectFamily(tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFamily(%q) error = %v, wantErr %v", tt.model, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DetectFamily(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}
