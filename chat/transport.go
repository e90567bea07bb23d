package chat

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single generation when the caller sets none.
const DefaultTimeout = 5 * time.Minute

// Chunk is one unit of a streamed completion. A chunk with a non-nil Err is
// the last item a producer sends.
type Chunk struct {
	Data []byte
	Err  error
}

// InvokeOptions are passed through to the transport on each generation.
type InvokeOptions struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature *float64
	Stop        []string
}

func (o InvokeOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Transport sends a fully formatted prompt to a serving backend.
//
// Stream returns a channel the implementation feeds from its own goroutine
// and closes when the completion ends. Implementations must stop sending
// once ctx is done.
//
// The interface lives here rather than in the provider package so that
// provider implementations can import chat without a cycle.
type Transport interface {
	Stream(ctx context.Context, prompt string, opts InvokeOptions) (<-chan Chunk, error)
	Generate(ctx context.Context, prompt string, opts InvokeOptions) (string, error)
}
