package parsers

import (
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// defaultDocumentTitle is used when the filename yields no title.
const defaultDocumentTitle = "Documento"

// PlainText wraps raw content as a single document conversation. It is the
// last resort for files no format parser accepts.
func PlainText(content []byte, filename string) []domain.Conversation {
	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil
	}

	title := titleFromFilename(filename, ".md", ".txt")
	if title == "" {
		title = defaultDocumentTitle
	}

	return []domain.Conversation{{
		ID:       stableID(string(domain.SourceDocument), filename, text),
		Title:    title,
		Source:   domain.SourceDocument,
		Messages: []domain.Message{{Role: domain.RoleUser, Content: text}},
	}}
}
