package testutil

import (
	"context"
	"strings"
	"sync"

	"promptchat/chat"
	"promptchat/ollama"
)

// MockTransport implements chat.Transport for testing
type MockTransport struct {
	// Configurable responses
	StreamFunc   func(ctx context.Context, prompt string, opts chat.InvokeOptions) (<-chan chat.Chunk, error)
	GenerateFunc func(ctx context.Context, prompt string, opts chat.InvokeOptions) (string, error)

	// Backend description, for provider.Transport
	Models  []ollama.ModelInfo
	PingErr error

	mu      sync.Mutex
	model   string
	prompts []string
	options []chat.InvokeOptions
}

// NewMockTransport creates a mock that streams the given chunks for every call
func NewMockTransport(chunks ...string) *MockTransport {
	mock := &MockTransport{model: "mock-model"}
	mock.StreamFunc = func(ctx context.Context, prompt string, opts chat.InvokeOptions) (<-chan chat.Chunk, error) {
		return ChunkStream(ctx, chunks...), nil
	}
	mock.GenerateFunc = func(ctx context.Context, prompt string, opts chat.InvokeOptions) (string, error) {
		return strings.Join(chunks, ""), nil
	}
	return mock
}

func (m *MockTransport) Stream(ctx context.Context, prompt string, opts chat.InvokeOptions) (<-chan chat.Chunk, error) {
	m.record(prompt, opts)
	return m.StreamFunc(ctx, prompt, opts)
}

func (m *MockTransport) Generate(ctx context.Context, prompt string, opts chat.InvokeOptions) (string, error) {
	m.record(prompt, opts)
	return m.GenerateFunc(ctx, prompt, opts)
}

func (m *MockTransport) record(prompt string, opts chat.InvokeOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
}

func (m *MockTransport) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	if m.PingErr != nil {
		return nil, m.PingErr
	}
	return append([]ollama.ModelInfo(nil), m.Models...), nil
}

func (m *MockTransport) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *MockTransport) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

func (m *MockTransport) Ping(ctx context.Context) error {
	return m.PingErr
}

// Prompts returns every prompt received, in call order
func (m *MockTransport) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Options returns the options of every call, in call order
func (m *MockTransport) Options() []chat.InvokeOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]chat.InvokeOptions(nil), m.options...)
}

// ChunkStream feeds chunks from a goroutine the way a real transport does,
// stopping early if ctx ends.
func ChunkStream(ctx context.Context, chunks ...string) <-chan chat.Chunk {
	ch := make(chan chat.Chunk)
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case ch <- chat.Chunk{Data: []byte(c)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// FailingStream sends the given chunks followed by err.
func FailingStream(ctx context.Context, err error, chunks ...string) <-chan chat.Chunk {
	ch := make(chan chat.Chunk)
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case ch <- chat.Chunk{Data: []byte(c)}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case ch <- chat.Chunk{Err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}
