// Package provider implements chat.Transport over real model-serving
// backends.
//
// Every transport sends the prompt exactly as the chat package formatted it.
// The control tokens are already in the string, so the backend must not
// apply its own chat template:
//   - OllamaTransport uses /api/generate with raw mode
//   - OpenAITransport uses the legacy /v1/completions endpoint, which
//     llama.cpp server, vLLM and LM Studio serve for raw prompts
//
// # Streaming
//
// Stream starts a goroutine that pushes one chat.Chunk per backend delta
// into an unbuffered channel and closes it when the completion ends. A
// backend error is delivered as a final chunk carrying Err. The goroutine
// selects on ctx.Done() for every send, so abandoning the stream only
// requires cancelling the context.
//
// # Usage
//
//	t, err := provider.NewTransport(provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1:8b",
//	})
//	if err != nil {
//	    // handle error
//	}
//	session := chat.NewSession(system, formatter, t)
package provider

import (
	"context"

	"promptchat/chat"
	"promptchat/ollama"
)

// ProviderType identifies the transport implementation.
type ProviderType string

const (
	ProviderTypeOllama ProviderType = "ollama"
	ProviderTypeOpenAI ProviderType = "openai"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // OpenAI-compatible servers only
}

// Transport is a chat.Transport that can also describe its backend.
type Transport interface {
	chat.Transport

	// ListModels returns the models the backend can serve.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the model used for generation.
	GetModel() string

	// SetModel changes the model for subsequent generations.
	SetModel(model string)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// send delivers c unless ctx ends first. It reports whether c was sent.
func send(ctx context.Context, ch chan<- chat.Chunk, c chat.Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
