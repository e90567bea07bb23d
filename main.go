package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"promptchat/chat"
	"promptchat/cli"
	"promptchat/config"
	"promptchat/provider"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

type flags struct {
	configPath  string
	provider    string
	endpoint    string
	model       string
	family      string
	style       string
	character   string
	system      string
	maxHistory  int
	maxToken    int
	timeout     time.Duration
	noStream    bool
	once        string
	writeConfig bool
	version     bool
}

func newFlagSet(f *flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("promptchat", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "config file (default ~/.config/promptchat/config.toml)")
	fs.StringVar(&f.provider, "provider", "", "backend: ollama or openai (llama.cpp, vLLM, LM Studio)")
	fs.StringVar(&f.endpoint, "endpoint", "", "backend base URL")
	fs.StringVarP(&f.model, "model", "m", "", "model name")
	fs.StringVar(&f.family, "family", "", "prompt grammar: auto, llama3 or gemma2")
	fs.StringVar(&f.style, "style", "", "prompt style: plain or multiuser")
	fs.StringVar(&f.character, "character", "", "character name for the multiuser style")
	fs.StringVar(&f.system, "system", "", "system message")
	fs.IntVar(&f.maxHistory, "max-history", 0, "log entries sent with each prompt")
	fs.IntVar(&f.maxToken, "max-token", 0, "generation cap per reply")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-reply timeout")
	fs.BoolVar(&f.noStream, "no-stream", false, "wait for the whole reply instead of streaming")
	fs.StringVar(&f.once, "once", "", "send one message, print the reply and exit")
	fs.BoolVar(&f.writeConfig, "write-config", false, "save the effective configuration to the config file and exit")
	fs.BoolVarP(&f.version, "version", "v", false, "print version and exit")
	return fs
}

// applyFlags copies explicitly set flags over cfg. Flags win over the
// config file and the environment.
func applyFlags(fs *pflag.FlagSet, f *flags, cfg *config.Config) error {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("provider", &cfg.Server.Provider, f.provider)
	set("endpoint", &cfg.Server.Endpoint, f.endpoint)
	set("model", &cfg.Server.Model, f.model)
	set("family", &cfg.Prompt.Family, f.family)
	set("style", &cfg.Prompt.Style, f.style)
	set("character", &cfg.Prompt.CharacterName, f.character)
	set("system", &cfg.Prompt.SystemMessage, f.system)

	if fs.Changed("max-history") {
		cfg.Chat.MaxHistory = f.maxHistory
	}
	if fs.Changed("max-token") {
		cfg.Chat.MaxToken = f.maxToken
	}
	if fs.Changed("timeout") {
		cfg.Chat.Timeout = f.timeout.String()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var f flags
	fs := newFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if f.version {
		fmt.Printf("promptchat %s (%s)\n", Version, License)
		return nil
	}

	closeLog := config.InitDebugLog(config.GetConfigDir())
	defer closeLog()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(fs, &f, cfg); err != nil {
		return err
	}

	if f.writeConfig {
		path := f.configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	transport, err := provider.InitializeTransport(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize transport: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if check := provider.CheckTransport(checkCtx, transport); check.Err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.WarningStyle.Render("[Warning]"), check.Err)
	}
	cancel()

	app := cli.New(cfg, transport, chat.NewRegistry(), os.Stdout, os.Stderr)
	app.Stream = !f.noStream
	if _, err := app.NewSession(""); err != nil {
		return err
	}

	if f.once != "" {
		return app.Turn(ctx, f.once)
	}

	in := cli.NewInput(config.GetHistoryFilePath())
	defer in.Close()
	return app.Run(ctx, in)
}
