package provider

import (
	"promptchat/chat"
	"promptchat/config"
)

// InitializeTransport creates the transport described by cfg.Server.
//
// The provider package owns the transport lifecycle, so the mapping from
// config strings to a concrete implementation lives here, not in config or
// cli.
func InitializeTransport(cfg *config.Config) (Transport, error) {
	providerType, err := ParseProviderType(cfg.Server.Provider)
	if err != nil {
		return nil, err
	}

	t, err := NewTransport(Config{
		Type:    providerType,
		BaseURL: cfg.Server.Endpoint,
		Model:   cfg.Server.Model,
		APIKey:  cfg.Server.APIKey,
	})
	if err != nil {
		return nil, err
	}

	config.DebugLog.Debug("transport initialized",
		"provider", providerType,
		"endpoint", cfg.Server.Endpoint,
		"model", t.GetModel())
	return t, nil
}

// ResolveFormatter builds the prompt formatter for model from cfg.Prompt.
// Family "auto" (or empty) is detected from the model name.
func ResolveFormatter(cfg *config.Config, model string) (chat.Formatter, error) {
	var (
		family chat.Family
		err    error
	)
	if cfg.Prompt.Family == "" || cfg.Prompt.Family == config.FamilyAuto {
		family, err = DetectFamily(model)
	} else {
		family, err = chat.ParseFamily(cfg.Prompt.Family)
	}
	if err != nil {
		return chat.Formatter{}, err
	}
	style, err := cfg.Style()
	if err != nil {
		return chat.Formatter{}, err
	}

	return chat.Formatter{
		Family:        family,
		Style:         style,
		CharacterName: cfg.Prompt.CharacterName,
	}, nil
}

// SessionOptions translates cfg.Chat and cfg.Stream into session options.
func SessionOptions(cfg *config.Config) []chat.SessionOption {
	return []chat.SessionOption{
		chat.WithMaxHistory(cfg.Chat.MaxHistory),
		chat.WithMaxToken(cfg.Chat.MaxToken),
		chat.WithLeadingNewlineFilter(cfg.Stream.SkipLeadingNewlines),
		chat.WithLogger(config.DebugLog),
	}
}

// InvokeOptions translates cfg.Chat into per-generation options.
func InvokeOptions(cfg *config.Config) chat.InvokeOptions {
	return chat.InvokeOptions{
		Timeout:     cfg.TimeoutDuration(),
		MaxTokens:   cfg.Chat.MaxToken,
		Temperature: cfg.Chat.Temperature,
		Stop:        cfg.Chat.Stop,
	}
}
