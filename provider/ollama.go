package provider

import (
	"context"
	"errors"
	"fmt"

	"promptchat/chat"
	"promptchat/ollama"
)

// OllamaTransport wraps the ollama.Client to implement Transport.
//
// It converts chat.InvokeOptions into Ollama runtime options (num_predict,
// temperature, stop) and turns every GenerateResponse into one chunk.
type OllamaTransport struct {
	client *ollama.Client
}

// NewOllamaTransport creates a new Ollama transport instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The model name to use (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaTransport(baseURL, model string) (*OllamaTransport, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaTransport{
		client: client,
	}, nil
}

// errStreamAbandoned stops the Ollama response loop once nobody is reading.
var errStreamAbandoned = errors.New("stream abandoned")

// Stream implements chat.Transport.Stream.
//
// The request is started in a goroutine; connection and HTTP errors surface
// as the final chunk rather than from Stream itself.
func (t *OllamaTransport) Stream(ctx context.Context, prompt string, opts chat.InvokeOptions) (<-chan chat.Chunk, error) {
	ch := make(chan chat.Chunk)

	go func() {
		defer close(ch)

		err := t.client.Generate(ctx, prompt, toGenerateOptions(opts), func(text string) error {
			if !send(ctx, ch, chat.Chunk{Data: []byte(text)}) {
				return errStreamAbandoned
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStreamAbandoned) {
			send(ctx, ch, chat.Chunk{Err: fmt.Errorf("ollama generate: %w", err)})
		}
	}()

	return ch, nil
}

// Generate implements chat.Transport.Generate with a single non-streaming
// request.
func (t *OllamaTransport) Generate(ctx context.Context, prompt string, opts chat.InvokeOptions) (string, error) {
	text, err := t.client.GenerateOnce(ctx, prompt, toGenerateOptions(opts))
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text, nil
}

// ListModels returns every model installed on the Ollama server.
func (t *OllamaTransport) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return t.client.ListModels(ctx)
}

func (t *OllamaTransport) GetModel() string {
	return t.client.GetModel()
}

func (t *OllamaTransport) SetModel(model string) {
	t.client.SetModel(model)
}

// Ping checks if the Ollama server is reachable.
func (t *OllamaTransport) Ping(ctx context.Context) error {
	return t.client.Ping(ctx)
}

func toGenerateOptions(opts chat.InvokeOptions) ollama.GenerateOptions {
	return ollama.GenerateOptions{
		NumPredict:  opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
	}
}
