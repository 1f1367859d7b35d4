package domain

import (
	"strings"
	"time"
)

// Source identifies the platform a conversation was exported from.
// The set is closed; parsers never invent new values.
type Source string

// Known conversation sources.
const (
	SourceChatGPT  Source = "chatgpt"
	SourceClaude   Source = "claude"
	SourceGemini   Source = "gemini"
	SourceDeepseek Source = "deepseek"

	// SourceDocument marks raw text ingested through the plain-text fallback.
	SourceDocument Source = "document"

	// SourceLlucy marks live assistant sessions saved back into memory.
	SourceLlucy Source = "llucy"
)

// Valid returns true if the source is one of the known platforms.
func (s Source) Valid() bool {
	switch s {
	case SourceChatGPT, SourceClaude, SourceGemini, SourceDeepseek, SourceDocument, SourceLlucy:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// Role is the speaker of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is a normalised chat export.
// It is produced by a parser and not modified afterwards.
type Conversation struct {
	// ID is stable across re-ingestion when the export carries one.
	ID string

	// Title is the human-readable title.
	Title string

	// Source is the platform the conversation came from.
	Source Source

	// Messages are in original order and never empty.
	Messages []Message

	// CreatedAt is the export's creation timestamp, if it had one.
	CreatedAt *time.Time
}

// Transcript labels used when flattening a conversation for chunking.
const (
	UserLabel      = "Utente"
	AssistantLabel = "Assistente"
)

// Transcript renders the conversation as labelled turns separated by blank lines.
func (c *Conversation) Transcript() string {
	return FormatTranscript(c.Messages, AssistantLabel)
}

// FormatTranscript renders messages as "Label: content" paragraphs.
// assistantLabel lets saved sessions name the assistant.
func FormatTranscript(msgs []Message, assistantLabel string) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := assistantLabel
		if m.Role == RoleUser {
			label = UserLabel
		}
		parts = append(parts, label+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}
