package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"promptchat/config"
)

// LineReader supplies REPL input. Prompt returns liner.ErrPromptAborted on
// Ctrl-C and io.EOF on Ctrl-D.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// Input is a LineReader with line editing and persistent history.
type Input struct {
	line        *liner.State
	historyFile string
}

// NewInput opens the terminal for line editing and loads history from
// historyFile if it exists.
func NewInput(historyFile string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &Input{
		line:        line,
		historyFile: historyFile,
	}
	in.loadHistory()
	return in
}

func (in *Input) loadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads one line. Non-blank lines are added to history.
func (in *Input) Prompt(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// saveHistory writes history with owner-only permissions; chat input often
// contains private text.
func (in *Input) saveHistory() {
	if err := config.EnsureDir(filepath.Dir(in.historyFile)); err != nil {
		config.DebugLog.Warn("history dir", "error", err)
		return
	}

	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		config.DebugLog.Warn("history file", "error", err)
		return
	}
	defer f.Close()

	if _, err := in.line.WriteHistory(f); err != nil {
		config.DebugLog.Warn("history write", "error", err)
	}
}

// Close saves history and restores the terminal.
func (in *Input) Close() error {
	in.saveHistory()
	return in.line.Close()
}
