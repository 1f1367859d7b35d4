package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Markdown implements the interface.
var _ driven.Parser = (*Markdown)(nil)

// defaultMarkdownTitle is used when neither filename nor content yields a title.
const defaultMarkdownTitle = "Conversazione"

// titleRunes is how much of the first message becomes a fallback title.
const titleRunes = 50

var (
	userMarker      = regexp.MustCompile(`(?i)^(?:\*\*User:\*\*|## User|User:)`)
	assistantMarker = regexp.MustCompile(`(?i)^(?:\*\*(?:Assistant|ChatGPT):\*\*|## (?:Assistant|ChatGPT)|(?:Assistant|ChatGPT):)`)
)

// Markdown parses ChatGPT, Gemini and Deepseek markdown transcripts.
// All three share the same role-marker layout.
type Markdown struct{}

// NewMarkdown creates a markdown transcript parser.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Name returns the parser name.
func (p *Markdown) Name() string {
	return "markdown"
}

// Extensions returns the file extensions this parser handles.
func (p *Markdown) Extensions() []string {
	return []string{".md"}
}

// Parse scans the transcript for role markers and returns one conversation.
func (p *Markdown) Parse(ctx context.Context, content []byte, filename string) ([]domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := string(content)
	msgs := scanMessages(text)
	if len(msgs) == 0 {
		whole := strings.TrimSpace(text)
		if whole == "" {
			return nil, nil
		}
		msgs = []domain.Message{{Role: domain.RoleUser, Content: whole}}
	}

	title := titleFromFilename(filename, ".md")
	if title == "" {
		title = truncateRunes(msgs[0].Content, titleRunes)
	}
	if title == "" {
		title = defaultMarkdownTitle
	}

	source := DetectMarkdownSource(filename, text)

	return []domain.Conversation{{
		ID:       stableID(string(source), filename, text),
		Title:    title,
		Source:   source,
		Messages: msgs,
	}}, nil
}

// DetectMarkdownSource infers the exporting platform from the filename,
// falling back to a "# ChatGPT" heading and finally to ChatGPT.
func DetectMarkdownSource(filename, content string) domain.Source {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "chatgpt") || strings.Contains(content, "# ChatGPT"):
		return domain.SourceChatGPT
	case strings.Contains(name, "gemini"):
		return domain.SourceGemini
	case strings.Contains(name, "deepseek"):
		return domain.SourceDeepseek
	default:
		return domain.SourceChatGPT
	}
}

// scanMessages splits the transcript on role-marker lines. Text before the
// first marker is not part of any message.
func scanMessages(text string) []domain.Message {
	var (
		msgs    []domain.Message
		role    domain.Role
		buf     []string
		started bool
	)

	flush := func() {
		if !started {
			return
		}
		if body := strings.TrimSpace(strings.Join(buf, "\n")); body != "" {
			msgs = append(msgs, domain.Message{Role: role, Content: body})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		marker := userMarker.FindString(line)
		next := domain.RoleUser
		if marker == "" {
			marker = assistantMarker.FindString(line)
			next = domain.RoleAssistant
		}

		if marker != "" {
			flush()
			role = next
			started = true
			rest := strings.TrimSpace(line[len(marker):])
			rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			buf = buf[:0]
			if rest != "" {
				buf = append(buf, rest)
			}
			continue
		}

		if started {
			buf = append(buf, line)
		}
	}
	flush()

	return msgs
}
