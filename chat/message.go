package chat

// Role tags a message with the speaker the prompt grammar renders it as.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleModel     Role = "model" // Gemma's name for the assistant turn
)

// Message is a single conversation turn. Content is opaque text.
type Message struct {
	Role    Role
	Content string
}

// MessageLog is the ordered conversation history of one session.
// Entries are only ever appended; the only removal is a full Reset.
type MessageLog struct {
	entries []Message
}

// Append adds a message at the tail of the log.
func (l *MessageLog) Append(role Role, content string) {
	l.entries = append(l.entries, Message{Role: role, Content: content})
}

// Window returns a copy of the last limit entries in insertion order.
// A limit at or above the log length returns every entry; zero or a
// negative limit returns an empty slice.
func (l *MessageLog) Window(limit int) []Message {
	if limit <= 0 {
		return []Message{}
	}
	start := len(l.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Entries returns a copy of the whole log.
func (l *MessageLog) Entries() []Message {
	out := make([]Message, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of entries in the log.
func (l *MessageLog) Len() int {
	return len(l.entries)
}

// Reset drops every entry.
func (l *MessageLog) Reset() {
	l.entries = nil
}
