package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"promptchat/chat"
	"promptchat/ollama"
)

// DefaultOpenAIBaseURL points at a local llama.cpp server, the usual host
// for raw-prompt completions.
const DefaultOpenAIBaseURL = "http://localhost:8080/v1"

// OpenAITransport implements Transport against an OpenAI-compatible
// completions endpoint using the official OpenAI Go SDK.
type OpenAITransport struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenAITransport creates a new OpenAI-compatible transport.
//
// Parameters:
//   - baseURL: API base URL (default: "http://localhost:8080/v1")
//   - apiKey: API key; local servers usually accept any value
//   - model: model name; required because there is no sensible default
func NewOpenAITransport(baseURL, apiKey, model string) (*OpenAITransport, error) {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI-compatible transport requires a model name")
	}
	if apiKey == "" {
		apiKey = "none"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &OpenAITransport{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (t *OpenAITransport) params(prompt string, opts chat.InvokeOptions) openai.CompletionNewParams {
	params := openai.CompletionNewParams{
		Model:  openai.CompletionNewParamsModel(t.model),
		Prompt: openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if len(opts.Stop) > 0 {
		params.Stop = openai.CompletionNewParamsStopUnion{OfStringArray: opts.Stop}
	}
	return params
}

// Stream implements chat.Transport.Stream over server-sent events.
func (t *OpenAITransport) Stream(ctx context.Context, prompt string, opts chat.InvokeOptions) (<-chan chat.Chunk, error) {
	ch := make(chan chat.Chunk)

	go func() {
		defer close(ch)

		stream := t.client.Completions.NewStreaming(ctx, t.params(prompt, opts))
		defer stream.Close()

		for stream.Next() {
			completion := stream.Current()
			if len(completion.Choices) == 0 || completion.Choices[0].Text == "" {
				continue
			}
			if !send(ctx, ch, chat.Chunk{Data: []byte(completion.Choices[0].Text)}) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, ch, chat.Chunk{Err: fmt.Errorf("OpenAI streaming error: %w", err)})
		}
	}()

	return ch, nil
}

// Generate implements chat.Transport.Generate with a single request.
func (t *OpenAITransport) Generate(ctx context.Context, prompt string, opts chat.InvokeOptions) (string, error) {
	completion, err := t.client.Completions.New(ctx, t.params(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("OpenAI completion error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Text, nil
}

// ListModels implements Transport.ListModels.
func (t *OpenAITransport) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	modelsPage, err := t.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI models: %w", err)
	}

	result := make([]ollama.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, ollama.ModelInfo{Name: m.ID})
	}

	return result, nil
}

func (t *OpenAITransport) GetModel() string {
	return t.model
}

func (t *OpenAITransport) SetModel(model string) {
	t.model = model
}

// Ping implements Transport.Ping by attempting to list models.
func (t *OpenAITransport) Ping(ctx context.Context) error {
	_, err := t.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
