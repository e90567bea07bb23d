package chat

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// recordingWriter keeps each Write call separately.
type recordingWriter struct {
	writes []string
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func feed(parts ...string) <-chan Chunk {
	ch := make(chan Chunk, len(parts))
	for _, p := range parts {
		ch <- Chunk{Data: []byte(p)}
	}
	close(ch)
	return ch
}

func TestAssembleDropsLeadingNewlines(t *testing.T) {
	sink := &recordingWriter{}
	a := NewStreamAssembler(sink)

	got, err := a.Assemble(context.Background(), feed("", "\n", "\n", "Hi", " there"), nil)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("Assemble() = %q, want %q", got, "Hi there")
	}
	if len(sink.writes) != 2 || sink.writes[0] != "Hi" || sink.writes[1] != " there" {
		t.Errorf("sink writes = %q, want [\"Hi\" \" there\"]", sink.writes)
	}
}

func TestAssembleTransformFilters(t *testing.T) {
	sink := &recordingWriter{}
	a := NewStreamAssembler(sink)

	calls := 0
	transform := func(chunk []byte) ([]byte, bool) {
		calls++
		if bytes.Contains(chunk, []byte("BAD")) {
			return nil, false
		}
		return chunk, true
	}

	got, err := a.Assemble(context.Background(), feed("ok1", "BADstuff", "ok2"), transform)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got != "ok1ok2" {
		t.Errorf("Assemble() = %q, want %q", got, "ok1ok2")
	}
	if calls != 3 {
		t.Errorf("transform called %d times, want 3", calls)
	}
	if len(sink.writes) != 2 {
		t.Errorf("sink received %d writes, want 2", len(sink.writes))
	}
}

func TestAssembleMixedChunkStartsContent(t *testing.T) {
	a := NewStreamAssembler(nil)

	// The gate flips on the second chunk, so it is kept whole, newlines included.
	got, err := a.Assemble(context.Background(), feed("\n\n", "\nA", "\n\nB"), nil)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got != "\nA\n\nB" {
		t.Errorf("Assemble() = %q, want %q", got, "\nA\n\nB")
	}
}

func TestAssembleWithoutNewlineGate(t *testing.T) {
	a := &StreamAssembler{}

	got, err := a.Assemble(context.Background(), feed("", "\n", "text"), nil)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got != "\ntext" {
		t.Errorf("Assemble() = %q, want %q", got, "\ntext")
	}
}

func TestAssembleTransformRewrites(t *testing.T) {
	sink := &bytes.Buffer{}
	a := NewStreamAssembler(sink)

	upper := func(chunk []byte) ([]byte, bool) {
		return bytes.ToUpper(chunk), true
	}

	got, err := a.Assemble(context.Background(), feed("ab", "cd"), upper)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got != "ABCD" || sink.String() != "ABCD" {
		t.Errorf("result %q / sink %q, want both %q", got, sink.String(), "ABCD")
	}
}

func TestAssemblePropagatesSourceError(t *testing.T) {
	boom := errors.New("connection reset")
	ch := make(chan Chunk, 3)
	ch <- Chunk{Data: []byte("partial")}
	ch <- Chunk{Err: boom}
	close(ch)

	sink := &bytes.Buffer{}
	got, err := NewStreamAssembler(sink).Assemble(context.Background(), ch, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Assemble() error = %v, want %v", err, boom)
	}
	if got != "partial" || sink.String() != "partial" {
		t.Errorf("partial output = %q / %q, want %q", got, sink.String(), "partial")
	}
}

func TestAssembleCancellation(t *testing.T) {
	ch := make(chan Chunk) // never written, never closed
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := NewStreamAssembler(nil).Assemble(ctx, ch, nil)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Assemble() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Assemble did not return after cancellation")
	}
}
