package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.1:latest"
)

type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// GenerateCallback receives each piece of generated text in order.
type GenerateCallback func(text string) error

// GenerateOptions map onto Ollama's runtime model options.
type GenerateOptions struct {
	NumPredict  int
	Temperature *float64
	Stop        []string
}

func (o GenerateOptions) toMap() map[string]any {
	opts := map[string]any{}
	if o.NumPredict > 0 {
		opts["num_predict"] = o.NumPredict
	}
	if o.Temperature != nil {
		opts["temperature"] = *o.Temperature
	}
	if len(o.Stop) > 0 {
		opts["stop"] = o.Stop
	}
	return opts
}

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL: %q", baseURL)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Generate sends prompt verbatim (raw mode, no server-side template) and
// streams the completion through callback.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions, callback GenerateCallback) error {
	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  func(b bool) *bool { return &b }(true),
		Options: opts.toMap(),
	}

	respFunc := func(resp api.GenerateResponse) error {
		if callback != nil && resp.Response != "" {
			return callback(resp.Response)
		}
		return nil
	}

	return c.client.Generate(ctx, req, respFunc)
}

// GenerateOnce sends prompt verbatim and returns the whole completion in a
// single response.
func (c *Client) GenerateOnce(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  func(b bool) *bool { return &b }(false),
		Options: opts.toMap(),
	}

	var text string
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		text += resp.Response
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

type ModelInfo struct {
	Name   string
	Size   int64
	Family string // as reported by the server, e.g. "llama", "gemma2"
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, model := range resp.Models {
		models[i] = ModelInfo{
			Name:   model.Name,
			Size:   model.Size,
			Family: model.Details.Family,
		}
	}

	return models, nil
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}
