package testutil

import (
	"encoding/json"

	"promptchat/chat"
)

// TestConversation returns a short exchange for testing
func TestConversation() []chat.Message {
	return []chat.Message{
		{Role: chat.RoleUser, Content: "Hello, how are you?"},
		{Role: chat.RoleAssistant, Content: "I'm doing well, thank you!"},
		{Role: chat.RoleUser, Content: "Can you help me with a task?"},
	}
}

// NewLlamaSession returns a plain Llama 3 session over transport
func NewLlamaSession(system string, transport chat.Transport, opts ...chat.SessionOption) *chat.Session {
	return chat.NewSession(system, chat.Formatter{Family: chat.FamilyLlama3}, transport, opts...)
}

// NewGemmaCharacterSession returns a multi-user Gemma 2 session playing character
func NewGemmaCharacterSession(system, character string, transport chat.Transport, opts ...chat.SessionOption) *chat.Session {
	f := chat.Formatter{Family: chat.FamilyGemma2, Style: chat.StyleMultiUser, CharacterName: character}
	return chat.NewSession(system, f, transport, opts...)
}

// NDJSONGenerate renders Ollama /api/generate streaming lines for parts,
// ending with a done record.
func NDJSONGenerate(model string, parts ...string) string {
	var out string
	for _, p := range parts {
		out += `{"model":"` + model + `","response":` + quote(p) + `,"done":false}` + "\n"
	}
	out += `{"model":"` + model + `","response":"","done":true,"done_reason":"stop"}` + "\n"
	return out
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
