package chat

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultMaxHistory = 30
	DefaultMaxToken   = 1024
)

// Session is one conversation: a bounded history rendered through a fixed
// Formatter and generated through a Transport.
//
// History and system message reads and writes are safe from any goroutine.
// Generations on one session are serialized; a second Invoke waits until the
// first returns or its own context ends.
type Session struct {
	formatter Formatter
	transport Transport
	logger    *slog.Logger

	maxHistory   int
	maxToken     int
	skipNewlines bool

	mu     sync.Mutex
	system string
	log    MessageLog

	gen        chan struct{}
	processing atomic.Bool
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithMaxHistory bounds how many log entries are rendered into a prompt.
// Zero renders the system message only; negative values are ignored.
func WithMaxHistory(n int) SessionOption {
	return func(s *Session) {
		if n >= 0 {
			s.maxHistory = n
		}
	}
}

// WithMaxToken sets the generation cap used when InvokeOptions leaves it unset.
func WithMaxToken(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxToken = n
		}
	}
}

// WithLeadingNewlineFilter toggles dropping newline-only chunks at the
// start of a stream.
func WithLeadingNewlineFilter(enabled bool) SessionOption {
	return func(s *Session) {
		s.skipNewlines = enabled
	}
}

// WithLogger sets the logger used for generation diagnostics.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session bound to formatter and transport for its
// whole lifetime.
func NewSession(system string, formatter Formatter, transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		formatter:    formatter,
		transport:    transport,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxHistory:   DefaultMaxHistory,
		maxToken:     DefaultMaxToken,
		skipNewlines: true,
		system:       system,
		gen:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Formatter() Formatter { return s.formatter }
func (s *Session) MaxHistory() int      { return s.maxHistory }

// Processing reports whether a generation is in flight.
func (s *Session) Processing() bool {
	return s.processing.Load()
}

// SetSystemMessage replaces the system message. Earlier values are not kept.
func (s *Session) SetSystemMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = text
}

// SystemMessage returns the current system message.
func (s *Session) SystemMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system
}

// AddUserMessage appends a user turn under the default user name.
func (s *Session) AddUserMessage(text string) {
	s.AddUserMessageAs(text, DefaultUserName)
}

// AddUserMessageAs appends a user turn tagged with userName when the
// formatter is multi-user.
func (s *Session) AddUserMessageAs(text, userName string) {
	s.push(s.formatter.UserMessage(text, userName))
}

// AddAssistantMessage appends a model turn. Invoke never does this itself.
func (s *Session) AddAssistantMessage(text string) {
	s.push(s.formatter.AssistantMessage(text))
}

// AddUserReplyMessage appends a user turn quoting ref.
func (s *Session) AddUserReplyMessage(ref Reference, text, userName string) {
	s.push(s.formatter.UserReplyMessage(ref, text, userName))
}

// AddAssistantReplyMessage appends a model turn quoting ref.
func (s *Session) AddAssistantReplyMessage(ref Reference, text string) {
	s.push(s.formatter.AssistantReplyMessage(ref, text))
}

func (s *Session) push(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Append(m.Role, m.Content)
}

// History returns a copy of the full log.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Reset clears the history. The system message is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Reset()
}

// Prompt renders the current effective window. It reflects the state at the
// time of the call and may be used while a generation is in flight.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatter.Format(s.system, s.log.Window(s.maxHistory))
}

// ReplyPrompt renders the effective window and opens a reply to ref.
func (s *Session) ReplyPrompt(ref Reference) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatter.FormatReply(s.system, s.log.Window(s.maxHistory), ref)
}

// Invoke streams a completion for prompt. Each forwarded chunk passes
// through onChunk (identity when nil) and is written to sink (when non-nil)
// before the next chunk is read. The assembled reply is returned; the caller
// decides whether to add it to the history.
//
// Transport errors are returned unmodified along with any partial text.
func (s *Session) Invoke(ctx context.Context, prompt string, sink io.Writer, onChunk ChunkFunc, opts InvokeOptions) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()
	opts = s.withDefaults(opts)

	start := time.Now()
	chunks, err := s.transport.Stream(ctx, prompt, opts)
	if err != nil {
		s.logger.Debug("stream open failed", "error", err)
		return "", err
	}

	assembler := &StreamAssembler{SkipLeadingNewlines: s.skipNewlines, Sink: sink}
	text, err := assembler.Assemble(ctx, chunks, onChunk)
	s.logger.Debug("generation finished",
		"prompt_bytes", len(prompt),
		"reply_bytes", len(text),
		"duration", time.Since(start),
		"error", err)
	return text, err
}

// Complete runs a single non-streaming generation under the same
// serialization as Invoke.
func (s *Session) Complete(ctx context.Context, prompt string, opts InvokeOptions) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	return s.transport.Generate(ctx, prompt, s.withDefaults(opts))
}

func (s *Session) withDefaults(opts InvokeOptions) InvokeOptions {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = s.maxToken
	}
	return opts
}

// acquire takes the generation slot and marks the session busy.
func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.gen <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.processing.Store(true)
	return nil
}

func (s *Session) release() {
	s.processing.Store(false)
	<-s.gen
}
