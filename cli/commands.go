package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"promptchat/chat"
	"promptchat/config"
	"promptchat/provider"
)

type command struct {
	name  string
	args  string
	desc  string
	alias []string
	run   func(a *App, ctx context.Context, args string) (quit bool, err error)
}

// commands is also the order /help lists them in.
var commands []command

func init() {
	commands = []command{
		{name: "/help", alias: []string{"/h", "/?"}, desc: "Show this help", run: (*App).cmdHelp},
		{name: "/system", args: "[text]", desc: "Show or replace the system message", run: (*App).cmdSystem},
		{name: "/reset", alias: []string{"/clear"}, desc: "Clear the conversation, keep the system message", run: (*App).cmdReset},
		{name: "/history", desc: "Show the conversation log", run: (*App).cmdHistory},
		{name: "/prompt", desc: "Print the raw prompt the next turn would send", run: (*App).cmdPrompt},
		{name: "/as", args: "<user> <text>", desc: "Speak as a named participant (multiuser)", run: (*App).cmdAs},
		{name: "/reply", args: "<author> <quoted> | <text>", desc: "Reply to an earlier message (multiuser)", run: (*App).cmdReply},
		{name: "/session", args: "new|switch|list|delete [id]", desc: "Manage sessions", run: (*App).cmdSession},
		{name: "/models", desc: "List models on the server", run: (*App).cmdModels},
		{name: "/model", args: "[query]", desc: "Show or fuzzy-switch the model", run: (*App).cmdModel},
		{name: "/copy", desc: "Copy the last reply to the clipboard", run: (*App).cmdCopy},
		{name: "/quit", alias: []string{"/q", "/exit"}, desc: "Exit", run: (*App).cmdQuit},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
		for _, alias := range c.alias {
			if alias == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// splitCommand separates "/name rest of line" into its parts.
func splitCommand(line string) (name, args string) {
	name, args, _ = strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

func (a *App) runCommand(ctx context.Context, line string) (bool, error) {
	name, args := splitCommand(line)
	if name == "/" {
		name = "/help"
	}
	c, ok := lookupCommand(name)
	if !ok {
		return false, fmt.Errorf("unknown command: %s (type /help for commands)", name)
	}
	config.DebugLog.Debug("command", "name", c.name, "args", len(args))
	return c.run(a, ctx, args)
}

func (a *App) cmdHelp(ctx context.Context, args string) (bool, error) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, TitleStyle.Render("Available Commands"))
	fmt.Fprintln(a.out, rule(20))
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(a.out, "  %s  %s\n", CommandStyle.Render(fmt.Sprintf("%-38s", usage)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, DimStyle.Render("Ctrl+C cancels the current reply, Ctrl+D exits"))
	fmt.Fprintln(a.out)
	return false, nil
}

func (a *App) cmdSystem(ctx context.Context, args string) (bool, error) {
	_, s, err := a.Current()
	if err != nil {
		return false, err
	}
	if args == "" {
		if sys := s.SystemMessage(); sys != "" {
			fmt.Fprintln(a.out, DimStyle.Render(sys))
		} else {
			fmt.Fprintln(a.out, DimStyle.Render("[No system message]"))
		}
		return false, nil
	}
	s.SetSystemMessage(args)
	fmt.Fprintln(a.out, CommandStyle.Render("[System message updated]"))
	return false, nil
}

func (a *App) cmdReset(ctx context.Context, args string) (bool, error) {
	_, s, err := a.Current()
	if err != nil {
		return false, err
	}
	s.Reset()
	fmt.Fprintln(a.out, CommandStyle.Render("[Conversation cleared]"))
	return false, nil
}

func (a *App) cmdHistory(ctx context.Context, args string) (bool, error) {
	_, s, err := a.Current()
	if err != nil {
		return false, err
	}
	history := s.History()
	if len(history) == 0 {
		fmt.Fprintln(a.out, DimStyle.Render("[No messages yet]"))
		return false, nil
	}

	window := len(history)
	if limit := s.MaxHistory(); limit < window {
		window = limit
	}
	for i, m := range history {
		role := string(m.Role)
		switch m.Role {
		case chat.RoleUser:
			role = UserStyle.Render(role)
		default:
			role = AssistantStyle.Render(role)
		}
		marker := " "
		if i >= len(history)-window {
			// Sent with the next prompt
			marker = SelectedStyle.Render("*")
		}
		fmt.Fprintf(a.out, "%s %d. %s: %s\n", marker, i+1, role, truncate(m.Content, 100))
	}
	return false, nil
}

func (a *App) cmdPrompt(ctx context.Context, args string) (bool, error) {
	_, s, err := a.Current()
	if err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "%q\n", s.Prompt())
	return false, nil
}

func (a *App) cmdAs(ctx context.Context, args string) (bool, error) {
	user, text, _ := strings.Cut(args, " ")
	text = strings.TrimSpace(text)
	if user == "" || text == "" {
		return false, errors.New("usage: /as <user> <text>")
	}
	return false, a.TurnAs(ctx, user, text)
}

// cmdReply parses "<author> <quoted text> | <reply text>".
func (a *App) cmdReply(ctx context.Context, args string) (bool, error) {
	head, text, found := strings.Cut(args, "|")
	author, quoted, _ := strings.Cut(strings.TrimSpace(head), " ")
	text = strings.TrimSpace(text)
	quoted = strings.TrimSpace(quoted)
	if !found || author == "" || quoted == "" || text == "" {
		return false, errors.New("usage: /reply <author> <quoted> | <text>")
	}
	return false, a.Reply(ctx, chat.DefaultUserName, chat.Reference{Author: author, Text: quoted}, text)
}

func (a *App) cmdSession(ctx context.Context, args string) (bool, error) {
	sub, id, _ := strings.Cut(args, " ")
	id = strings.TrimSpace(id)

	switch sub {
	case "new":
		newID, err := a.NewSession(id)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(a.out, "%s %s\n", CommandStyle.Render("[Session created]"), newID)

	case "switch":
		if id == "" {
			return false, errors.New("usage: /session switch <id>")
		}
		full, err := a.resolveID(id)
		if err != nil {
			return false, err
		}
		a.mu.Lock()
		a.current = full
		a.mu.Unlock()
		fmt.Fprintf(a.out, "%s %s\n", CommandStyle.Render("[Switched]"), full)

	case "delete":
		if id == "" {
			return false, errors.New("usage: /session delete <id>")
		}
		full, err := a.resolveID(id)
		if err != nil {
			return false, err
		}
		if current, _, _ := a.Current(); current == full {
			return false, errors.New("cannot delete the current session; switch first")
		}
		a.registry.Delete(full)
		fmt.Fprintf(a.out, "%s %s\n", CommandStyle.Render("[Deleted]"), full)

	case "", "list":
		current, _, _ := a.Current()
		for _, sid := range a.registry.IDs() {
			s, ok := a.registry.Get(sid)
			if !ok {
				continue
			}
			line := fmt.Sprintf("%s  %d messages  %s", sid, len(s.History()), s.Formatter().Family)
			if s.Processing() {
				line += "  (generating)"
			}
			if sid == current {
				fmt.Fprintln(a.out, SelectedStyle.Render("* "+line))
			} else {
				fmt.Fprintln(a.out, "  "+line)
			}
		}

	default:
		return false, fmt.Errorf("unknown /session action %q", sub)
	}
	return false, nil
}

func (a *App) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models, err := a.transport.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names, nil
}

func (a *App) cmdModels(ctx context.Context, args string) (bool, error) {
	names, err := a.listModels(ctx)
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		fmt.Fprintln(a.out, DimStyle.Render("[No models on server]"))
		return false, nil
	}
	current := a.transport.GetModel()
	for _, name := range names {
		if name == current {
			fmt.Fprintln(a.out, SelectedStyle.Render("* "+name))
		} else {
			fmt.Fprintln(a.out, "  "+name)
		}
	}
	return false, nil
}

// cmdModel switches to the best fuzzy match for the query among the
// server's models.
func (a *App) cmdModel(ctx context.Context, args string) (bool, error) {
	if args == "" {
		fmt.Fprintf(a.out, "%s %s\n", DimStyle.Render("Current model:"), CommandStyle.Render(a.transport.GetModel()))
		return false, nil
	}

	names, err := a.listModels(ctx)
	if err != nil {
		return false, err
	}
	matches := fuzzy.Find(args, names)
	if len(matches) == 0 {
		return false, fmt.Errorf("no model matches %q", args)
	}
	chosen := matches[0].Str
	a.transport.SetModel(chosen)
	fmt.Fprintf(a.out, "%s %s\n", CommandStyle.Render("[Switched to model]"), HighlightStyle.Render(chosen))

	// A session keeps its formatter for life; warn when the new model
	// speaks a different grammar.
	if _, s, err := a.Current(); err == nil {
		want, err := provider.ResolveFormatter(a.cfg, chosen)
		if err != nil {
			fmt.Fprintf(a.errOut, "%s %v\n", WarningStyle.Render("[Warning]"), err)
		} else if want.Family != s.Formatter().Family {
			fmt.Fprintf(a.errOut, "%s %s uses the %s grammar; start a new session with /session new\n",
				WarningStyle.Render("[Warning]"), chosen, want.Family)
		}
	}
	return false, nil
}

func (a *App) cmdCopy(ctx context.Context, args string) (bool, error) {
	reply := a.LastReply()
	if reply == "" {
		return false, errors.New("no reply to copy yet")
	}
	if err := a.CopyText(reply); err != nil {
		return false, fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	fmt.Fprintln(a.out, CommandStyle.Render("[Copied last reply]"))
	return false, nil
}

func (a *App) cmdQuit(ctx context.Context, args string) (bool, error) {
	return true, nil
}

// truncate fits s on one line of at most n terminal columns.
func truncate(s string, n int) string {
	return runewidth.Truncate(strings.ReplaceAll(s, "\n", " "), n, "...")
}
