package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry routes files to parsers by extension.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]driven.Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]driven.Parser)}
}

// NewDefaultRegistry creates a registry with the Claude JSON and markdown
// transcript parsers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewClaude())
	r.Register(NewMarkdown())
	return r
}

// Register adds a parser for each of its extensions. A later registration
// for the same extension replaces the earlier one.
func (r *Registry) Register(parser driven.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range parser.Extensions() {
		r.parsers[strings.ToLower(ext)] = parser
	}
}

// Extensions returns the registered extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	return exts
}

// Supports reports whether a parser is registered for the file's extension.
func (r *Registry) Supports(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.parsers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parse decodes the file with the parser registered for its extension.
func (r *Registry) Parse(ctx context.Context, content []byte, filename string) ([]domain.Conversation, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.mu.RLock()
	parser, ok := r.parsers[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.NewParseError(filename, "no parser for extension",
			fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext))
	}
	return parser.Parse(ctx, content, filename)
}

// Fallback wraps the content as a plain-text document.
func (r *Registry) Fallback(content []byte, filename string) []domain.Conversation {
	return PlainText(content, filename)
}
