package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ChunkFunc transforms a chunk before it is forwarded. Returning ok=false
// drops the chunk from both the sink and the assembled result.
type ChunkFunc func(chunk []byte) (out []byte, ok bool)

// StreamAssembler turns a chunk stream into real-time output plus the final
// reply text.
//
// Some backends emit a burst of newline-only chunks before any content.
// With SkipLeadingNewlines set, every chunk is dropped whole until one
// carries a non-newline byte.
type StreamAssembler struct {
	SkipLeadingNewlines bool
	Sink                io.Writer
}

// NewStreamAssembler returns an assembler with the leading-newline filter on.
func NewStreamAssembler(sink io.Writer) *StreamAssembler {
	return &StreamAssembler{SkipLeadingNewlines: true, Sink: sink}
}

// Assemble drains chunks in arrival order. The returned string is exactly
// the concatenation of what was forwarded to Sink.
//
// A chunk carrying an error ends assembly and the error is returned as is.
// If ctx ends before the stream does, ctx.Err() is returned.
func (a *StreamAssembler) Assemble(ctx context.Context, chunks <-chan Chunk, transform ChunkFunc) (string, error) {
	var out strings.Builder
	started := !a.SkipLeadingNewlines

	for {
		var (
			chunk Chunk
			open  bool
		)
		select {
		case <-ctx.Done():
			return out.String(), ctx.Err()
		case chunk, open = <-chunks:
		}
		if !open {
			// Producers close early when ctx ends; that is not a clean finish.
			return out.String(), ctx.Err()
		}
		if chunk.Err != nil {
			return out.String(), chunk.Err
		}
		if len(chunk.Data) == 0 {
			continue
		}
		if !started && hasContent(chunk.Data) {
			started = true
		}
		if !started {
			continue
		}

		data, ok := chunk.Data, true
		if transform != nil {
			data, ok = transform(chunk.Data)
		}
		if !ok {
			continue
		}

		if a.Sink != nil {
			if _, err := a.Sink.Write(data); err != nil {
				return out.String(), fmt.Errorf("failed to write chunk to sink: %w", err)
			}
		}
		out.Write(data)
	}
}

func hasContent(data []byte) bool {
	for _, c := range data {
		if c != '\n' {
			return true
		}
	}
	return false
}
