package driven

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// Parser turns one export format into normalised conversations.
type Parser interface {
	// Name identifies the parser in logs and errors.
	Name() string

	// Extensions returns the lower-case file extensions this parser accepts.
	Extensions() []string

	// Parse decodes content. Conversations without any non-empty message
	// are dropped. Failures are returned as *domain.ParseError.
	Parse(ctx context.Context, content []byte, filename string) ([]domain.Conversation, error)
}

// ParserRegistry routes an uploaded file to the right parser.
type ParserRegistry interface {
	// Parse selects a parser by extension and decodes the file.
	Parse(ctx context.Context, content []byte, filename string) ([]domain.Conversation, error)

	// Fallback wraps the raw content as a single plain-text document
	// conversation. Callers use it as a last resort after Parse fails.
	Fallback(content []byte, filename string) []domain.Conversation

	// Register adds a parser to the registry.
	Register(parser Parser)
}
