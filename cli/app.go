// Package cli is the interactive front end: a line-editing REPL that drives
// chat sessions, plus the slash commands that inspect and steer them.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/peterh/liner"

	"promptchat/chat"
	"promptchat/config"
	"promptchat/provider"
)

// App owns the sessions of one interactive run. Sessions live in an
// injected registry; one of them is current and receives typed input.
type App struct {
	cfg       *config.Config
	transport provider.Transport
	registry  *chat.Registry

	out    io.Writer
	errOut io.Writer

	// Stream prints chunks as they arrive. When false a turn runs as a
	// single Complete call and the reply is printed at the end.
	Stream bool

	// CopyText puts text on the system clipboard.
	CopyText func(text string) error

	mu        sync.Mutex
	current   string
	lastReply string
	cancel    context.CancelFunc
}

// New creates an App. No session exists until NewSession is called.
func New(cfg *config.Config, transport provider.Transport, registry *chat.Registry, out, errOut io.Writer) *App {
	return &App{
		cfg:       cfg,
		transport: transport,
		registry:  registry,
		out:       out,
		errOut:    errOut,
		Stream:    true,
		CopyText:  clipboard.WriteAll,
	}
}

// NewSession creates a session for the current model, registers it under
// id (a new UUID when empty) and makes it current.
func (a *App) NewSession(id string) (string, error) {
	formatter, err := provider.ResolveFormatter(a.cfg, a.transport.GetModel())
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}

	session := chat.NewSession(a.cfg.Prompt.SystemMessage, formatter, a.transport, provider.SessionOptions(a.cfg)...)
	if _, ok := a.registry.Create(id, session); !ok {
		return "", fmt.Errorf("session %q already exists", id)
	}

	a.mu.Lock()
	a.current = id
	a.mu.Unlock()

	config.DebugLog.Debug("session created",
		"id", id,
		"family", formatter.Family,
		"style", formatter.Style)
	return id, nil
}

// Current returns the current session and its id.
func (a *App) Current() (string, *chat.Session, error) {
	a.mu.Lock()
	id := a.current
	a.mu.Unlock()

	s, ok := a.registry.Get(id)
	if !ok {
		return "", nil, errors.New("no current session; use /session new")
	}
	return id, s, nil
}

// LastReply returns the most recent model reply of this run.
func (a *App) LastReply() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastReply
}

// CancelGeneration cancels the generation in flight, if any.
func (a *App) CancelGeneration() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return false
	}
	a.cancel()
	a.cancel = nil
	return true
}

// Run reads lines from in until /quit, Ctrl-C at the prompt or EOF.
// Ctrl-C while a reply is streaming cancels that reply only.
func (a *App) Run(ctx context.Context, in LineReader) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	go func() {
		for range sigChan {
			if a.CancelGeneration() {
				fmt.Fprintln(a.errOut, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	a.printWelcome()

	for {
		line, err := in.Prompt(a.promptLabel())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		quit, err := a.Handle(ctx, line)
		if err != nil {
			fmt.Fprintf(a.errOut, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Handle processes one input line. It reports whether the REPL should stop.
func (a *App) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		return a.runCommand(ctx, line)
	}
	return false, a.Turn(ctx, line)
}

// Turn sends text as a user message and prints the model's reply.
//
// On failure the user message stays in the log and any partial output stays
// on screen; only a complete reply is added to the history.
func (a *App) Turn(ctx context.Context, text string) error {
	_, s, err := a.Current()
	if err != nil {
		return err
	}
	s.AddUserMessage(text)
	reply, err := a.generate(ctx, s, s.Prompt())
	if err != nil {
		return err
	}
	s.AddAssistantMessage(reply)
	return nil
}

// TurnAs is Turn for a named participant of a multi-user chat.
func (a *App) TurnAs(ctx context.Context, userName, text string) error {
	_, s, err := a.Current()
	if err != nil {
		return err
	}
	if s.Formatter().Style != chat.StyleMultiUser {
		return errors.New("/as needs prompt style multiuser")
	}
	s.AddUserMessageAs(text, userName)
	reply, err := a.generate(ctx, s, s.Prompt())
	if err != nil {
		return err
	}
	s.AddAssistantMessage(reply)
	return nil
}

// Reply records userName answering ref with text, then has the character
// answer userName's message with a quoted reply.
func (a *App) Reply(ctx context.Context, userName string, ref chat.Reference, text string) error {
	_, s, err := a.Current()
	if err != nil {
		return err
	}
	if s.Formatter().Style != chat.StyleMultiUser {
		return errors.New("/reply needs prompt style multiuser")
	}
	s.AddUserReplyMessage(ref, text, userName)

	asked := chat.Reference{Author: userName, Text: text}
	reply, err := a.generate(ctx, s, s.ReplyPrompt(asked))
	if err != nil {
		return err
	}
	s.AddAssistantReplyMessage(asked, reply)
	return nil
}

func (a *App) generate(ctx context.Context, s *chat.Session, prompt string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.cancel = nil
		a.mu.Unlock()
		cancel()
	}()

	opts := provider.InvokeOptions(a.cfg)
	fmt.Fprint(a.out, AssistantStyle.Render(a.speaker(s)+":")+" ")

	var (
		reply string
		err   error
	)
	if a.Stream {
		reply, err = s.Invoke(ctx, prompt, a.out, nil, opts)
	} else {
		reply, err = s.Complete(ctx, prompt, opts)
		fmt.Fprint(a.out, reply)
	}
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	a.mu.Lock()
	a.lastReply = reply
	a.mu.Unlock()
	return reply, nil
}

func (a *App) speaker(s *chat.Session) string {
	if f := s.Formatter(); f.Style == chat.StyleMultiUser && f.CharacterName != "" {
		return f.CharacterName
	}
	return a.transport.GetModel()
}

func (a *App) promptLabel() string {
	id, _, err := a.Current()
	if err != nil {
		return UserStyle.Render("> ")
	}
	return UserStyle.Render(fmt.Sprintf("[%s]> ", shortID(id)))
}

func (a *App) printWelcome() {
	fmt.Fprintln(a.out, TitleStyle.Render("promptchat"))
	fmt.Fprintln(a.out, rule(30))
	fmt.Fprintf(a.out, "%s %s\n", DimStyle.Render("Model:"), CommandStyle.Render(a.transport.GetModel()))
	if _, s, err := a.Current(); err == nil {
		f := s.Formatter()
		fmt.Fprintf(a.out, "%s %s (%s)\n", DimStyle.Render("Prompt:"), CommandStyle.Render(f.Family.String()), f.Style)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, FormatFooter("/help", "Commands", "/quit", "Exit", "Ctrl+C", "Cancel reply"))
	fmt.Fprintln(a.out)
}

// resolveID finds a session by full id or unique prefix.
func (a *App) resolveID(prefix string) (string, error) {
	if _, ok := a.registry.Get(prefix); ok {
		return prefix, nil
	}
	var matches []string
	for _, id := range a.registry.IDs() {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func shortID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id[:8]
	}
	return id
}
