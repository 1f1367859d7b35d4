package parsers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Claude implements the interface.
var _ driven.Parser = (*Claude)(nil)

// defaultClaudeTitle is used when a conversation has neither name nor title.
const defaultClaudeTitle = "Conversazione senza titolo"

// Claude parses Claude's conversations.json export.
type Claude struct{}

// NewClaude creates a Claude JSON parser.
func NewClaude() *Claude {
	return &Claude{}
}

// Name returns the parser name.
func (p *Claude) Name() string {
	return "claude"
}

// Extensions returns the file extensions this parser handles.
func (p *Claude) Extensions() []string {
	return []string{".json"}
}

// claudeConversation maps the fields recall understands. Unknown fields are ignored.
type claudeConversation struct {
	UUID         string           `json:"uuid"`
	ID           flexString       `json:"id"`
	Name         string           `json:"name"`
	Title        string           `json:"title"`
	CreatedAt    string           `json:"created_at"`
	ChatMessages *[]claudeMessage `json:"chat_messages"`
	Messages     *[]claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Sender  string          `json:"sender"`
	Role    string          `json:"role"`
	Text    json.RawMessage `json:"text"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Text json.RawMessage `json:"text"`
}

// Parse decodes the export, accepting an array root, a
// {"conversations": [...]} wrapper, or a single conversation object.
func (p *Claude) Parse(ctx context.Context, content []byte, filename string) ([]domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := sniffConversations(content)
	if err != nil {
		return nil, domain.NewParseError(filename, "decoding claude export", err)
	}

	convs := make([]domain.Conversation, 0, len(items))
	for i, raw := range items {
		var c claudeConversation
		if err := json.Unmarshal(raw, &c); err != nil {
			// Entries that are not conversation objects carry no messages.
			continue
		}

		conv, ok := c.toDomain(filename, i)
		if ok {
			convs = append(convs, conv)
		}
	}

	return convs, nil
}

func (c *claudeConversation) toDomain(filename string, index int) (domain.Conversation, bool) {
	raw := c.ChatMessages
	if raw == nil {
		raw = c.Messages
	}
	if raw == nil {
		return domain.Conversation{}, false
	}

	msgs := make([]domain.Message, 0, len(*raw))
	for _, m := range *raw {
		text := strings.TrimSpace(m.content())
		if text == "" {
			continue
		}
		msgs = append(msgs, domain.Message{Role: m.role(), Content: text})
	}
	if len(msgs) == 0 {
		return domain.Conversation{}, false
	}

	title := firstNonEmpty(c.Name, c.Title, defaultClaudeTitle)
	id := firstNonEmpty(c.UUID, string(c.ID))
	if id == "" {
		id = stableID(filename, strconv.Itoa(index), title, msgs[0].Content)
	}

	conv := domain.Conversation{
		ID:       id,
		Title:    title,
		Source:   domain.SourceClaude,
		Messages: msgs,
	}
	if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
		conv.CreatedAt = &t
	}

	return conv, true
}

// role maps sender/role synonyms: only human senders and user roles are the user.
func (m *claudeMessage) role() domain.Role {
	if m.Sender == "human" || m.Role == "user" {
		return domain.RoleUser
	}
	return domain.RoleAssistant
}

// content prefers a string "text", then a string "content", then the
// concatenated text of "content" blocks.
func (m *claudeMessage) content() string {
	if s, ok := rawString(m.Text); ok {
		return s
	}
	if s, ok := rawString(m.Content); ok {
		return s
	}

	var blocks []claudeBlock
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return ""
	}

	var b strings.Builder
	for _, block := range blocks {
		if s, ok := rawString(block.Text); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// sniffConversations returns the raw conversation objects in content.
func sniffConversations(content []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, domain.ErrMalformedPayload
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, domainMalformed(err)
		}
		return items, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, domainMalformed(err)
		}

		if wrapped, ok := obj["conversations"]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(wrapped, &items); err != nil {
				return nil, domainMalformed(err)
			}
			return items, nil
		}

		_, hasChat := obj["chat_messages"]
		_, hasMessages := obj["messages"]
		if hasChat || hasMessages {
			return []json.RawMessage{trimmed}, nil
		}
		return nil, domain.ErrMalformedPayload

	default:
		return nil, domain.ErrMalformedPayload
	}
}

// flexString accepts a JSON string or number and ignores anything else.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if s, ok := rawString(data); ok {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
	}
	return nil
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func domainMalformed(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
