package config

import "promptchat/chat"

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Provider: "ollama",
			Endpoint: "http://localhost:11434",
			Model:    "llama3.1:latest",
		},
		Prompt: PromptConfig{
			Family:        FamilyAuto,
			Style:         "plain",
			SystemMessage: "You are a helpful assistant. Keep replies short and conversational.",
		},
		Chat: ChatConfig{
			MaxHistory: chat.DefaultMaxHistory,
			MaxToken:   chat.DefaultMaxToken,
			Timeout:    chat.DefaultTimeout.String(),
		},
		Stream: StreamConfig{
			SkipLeadingNewlines: true,
		},
	}
}

func GenerateConfigTemplate() string {
	return `# promptchat configuration
# Location: ~/.config/promptchat/config.toml
# This file uses TOML format: https://toml.io

[server]
# "ollama" (raw /api/generate) or "openai" (OpenAI-compatible /v1/completions,
# e.g. llama.cpp server, vLLM, LM Studio)
provider = "ollama"
endpoint = "http://localhost:11434"
model = "llama3.1:latest"
# api_key = ""

[prompt]
# Control-token grammar: "auto" (from the model name), "llama3" or "gemma2"
family = "auto"
# "plain" for a one-on-one chat, "multiuser" for a character in a group chat
style = "plain"
# character_name = ""
system_message = "You are a helpful assistant. Keep replies short and conversational."

[chat]
# Number of past messages rendered into each prompt (0 = system message only)
max_history = 30
# Generation cap passed to the backend
max_token = 1024
timeout = "5m0s"
# temperature = 0.7
# stop = ["<|eot_id|>"]

[stream]
# Drop newline-only chunks some backends send before the reply starts
skip_leading_newlines = true
`
}
