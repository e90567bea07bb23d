package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var Debug = false

// DebugLog is never nil; it discards everything until InitDebugLog enables it.
var DebugLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func CheckDebug() bool {
	debug := os.Getenv("PROMPTCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog points DebugLog at <dir>/debug.log when PROMPTCHAT_DEBUG is
// set. The returned function closes the file.
func InitDebugLog(dir string) func() {
	if !CheckDebug() {
		return func() {}
	}

	if err := EnsureDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create log directory %s: %v\n", dir, err)
		return func() {}
	}

	logPath := filepath.Join(dir, "debug.log")

	// 0600: prompts and replies end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return func() {}
	}

	Debug = true
	DebugLog = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	DebugLog.Info("debug logging started", "path", logPath)

	return func() { f.Close() }
}
