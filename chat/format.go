package chat

import (
	"fmt"
	"strings"
)

// Family identifies a model family's control-token grammar.
type Family int

const (
	FamilyLlama3 Family = iota
	FamilyGemma2
)

func (f Family) String() string {
	switch f {
	case FamilyLlama3:
		return "llama3"
	case FamilyGemma2:
		return "gemma2"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily maps a configured family name to a Family.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "llama3", "llama":
		return FamilyLlama3, nil
	case "gemma2", "gemma":
		return FamilyGemma2, nil
	default:
		return 0, fmt.Errorf("unknown prompt family: %q", name)
	}
}

// Style selects between a one-on-one conversation and a character taking
// part in a multi-user chat.
type Style int

const (
	StylePlain Style = iota
	StyleMultiUser
)

func (s Style) String() string {
	if s == StyleMultiUser {
		return "multiuser"
	}
	return "plain"
}

// ParseStyle maps a configured style name to a Style.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return StylePlain, nil
	case "multiuser", "multi-user", "character":
		return StyleMultiUser, nil
	default:
		return 0, fmt.Errorf("unknown prompt style: %q", name)
	}
}

// Llama 3 control tokens.
const (
	LlamaBeginOfText = "<|begin_of_text|>"
	LlamaStartHeader = "<|start_header_id|>"
	LlamaEndHeader   = "<|end_header_id|>"
	LlamaEOT         = "<|eot_id|>"
)

// Gemma 2 control tokens.
const (
	GemmaBOS       = "<bos>"
	GemmaStartTurn = "<start_of_turn>"
	GemmaEndTurn   = "<end_of_turn>"
	GemmaEOS       = "<eos>"
)

// DefaultUserName is the speaker tag used for multi-user messages when the
// caller does not name the author.
const DefaultUserName = "user"

// Reference is the message a reply is addressed to.
type Reference struct {
	Author string
	Text   string
}

// Formatter renders an effective window into the exact prompt string a
// model family expects. The backend tokenizes on the literal control tokens,
// so every byte matters.
//
// CharacterName is only read by the MultiUser style.
type Formatter struct {
	Family        Family
	Style         Style
	CharacterName string
}

// Format renders the system message and window followed by the generation
// cursor the backend continues from.
func (f Formatter) Format(system string, window []Message) string {
	var b strings.Builder
	f.writeEntries(&b, system, window)
	b.WriteString(f.cursor())
	return b.String()
}

// FormatReply renders the window and opens a turn that answers ref.
// Plain styles have no notion of quoted replies and render as Format.
func (f Formatter) FormatReply(system string, window []Message, ref Reference) string {
	if f.Style != StyleMultiUser {
		return f.Format(system, window)
	}

	var b strings.Builder
	f.writeEntries(&b, system, window)
	quoted := f.quote(ref) + f.speakerTag(f.CharacterName)
	switch f.Family {
	case FamilyGemma2:
		b.WriteString(GemmaStartTurn + string(RoleUser) + "\n" + quoted)
	default:
		b.WriteString(LlamaStartHeader + string(RoleUser) + LlamaEndHeader + "\n\n" + quoted)
	}
	return b.String()
}

func (f Formatter) writeEntries(b *strings.Builder, system string, window []Message) {
	switch f.Family {
	case FamilyGemma2:
		b.WriteString(GemmaBOS)
		writeGemmaTurn(b, RoleSystem, system)
		for _, m := range window {
			writeGemmaTurn(b, m.Role, m.Content)
		}
	default:
		b.WriteString(LlamaBeginOfText)
		writeLlamaTurn(b, RoleSystem, system)
		for _, m := range window {
			writeLlamaTurn(b, m.Role, m.Content)
		}
	}
}

func writeLlamaTurn(b *strings.Builder, role Role, content string) {
	b.WriteString(LlamaStartHeader)
	b.WriteString(string(role))
	b.WriteString(LlamaEndHeader)
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteString(LlamaEOT)
}

func writeGemmaTurn(b *strings.Builder, role Role, content string) {
	b.WriteString(GemmaStartTurn)
	b.WriteString(string(role))
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString(GemmaEndTurn)
	b.WriteString("\n")
}

// cursor is the trailing header the backend appends its output after.
func (f Formatter) cursor() string {
	switch f.Family {
	case FamilyGemma2:
		if f.Style == StyleMultiUser {
			return GemmaStartTurn + string(RoleModel) + "\n" + f.speakerTag(f.CharacterName)
		}
		return GemmaStartTurn + string(RoleModel) + "\n"
	default:
		if f.Style == StyleMultiUser {
			return LlamaStartHeader + string(RoleUser) + LlamaEndHeader + "\n\n" + f.speakerTag(f.CharacterName)
		}
		return LlamaStartHeader + string(RoleAssistant) + LlamaEndHeader
	}
}

// UserMessage builds the log entry for a user turn. userName is only used
// by the MultiUser style; an empty name falls back to DefaultUserName.
func (f Formatter) UserMessage(text, userName string) Message {
	if f.Style == StyleMultiUser {
		return Message{Role: RoleUser, Content: f.speakerTag(userName) + text}
	}
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds the log entry for a model turn.
func (f Formatter) AssistantMessage(text string) Message {
	if f.Style == StyleMultiUser {
		return Message{Role: RoleUser, Content: f.speakerTag(f.CharacterName) + text}
	}
	return Message{Role: f.assistantRole(), Content: text}
}

// UserReplyMessage builds a user turn quoting ref.
func (f Formatter) UserReplyMessage(ref Reference, text, userName string) Message {
	if f.Style != StyleMultiUser {
		return f.UserMessage(text, userName)
	}
	return Message{Role: RoleUser, Content: f.quote(ref) + f.speakerTag(userName) + text}
}

// AssistantReplyMessage builds a character turn quoting ref.
func (f Formatter) AssistantReplyMessage(ref Reference, text string) Message {
	if f.Style != StyleMultiUser {
		return f.AssistantMessage(text)
	}
	return Message{Role: RoleUser, Content: f.quote(ref) + f.speakerTag(f.CharacterName) + text}
}

func (f Formatter) assistantRole() Role {
	if f.Family == FamilyGemma2 {
		return RoleModel
	}
	return RoleAssistant
}

func (f Formatter) speakerTag(name string) string {
	if name == "" {
		name = DefaultUserName
	}
	return "<" + name + ">"
}

// quote keeps ref.Author as given; an empty author renders as "<>".
func (f Formatter) quote(ref Reference) string {
	return "「<" + ref.Author + ">" + ref.Text + "」への返信: "
}
