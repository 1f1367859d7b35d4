// Package chunker splits conversation transcripts into bounded,
// overlapping chunks that prefer natural breakpoints.
package chunker

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// ErrInvalidChunkConfig is returned when size and overlap cannot produce
// progress: size must be positive and overlap must be in [0, size).
var ErrInvalidChunkConfig = errors.New("chunker: overlap must be non-negative and smaller than chunk size")

// breakpoints in priority order: paragraph, line, sentence end, comma.
var breakpoints = []string{"\n\n", "\n", ". ", "! ", "? ", ", "}

// Processor cuts a conversation transcript into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor. Invalid options are a configuration
// error and are reported immediately rather than clamped.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process renders the conversation transcript and splits it.
// Input chunks are ignored; this processor creates chunks from the conversation.
func (p *Processor) Process(ctx context.Context, conv *domain.Conversation, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(conv.Messages) == 0 {
		return nil, nil
	}

	parts, err := Split(conv.Transcript(), p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, content := range parts {
		chunks[i] = domain.Chunk{
			ID:             domain.ChunkID(conv.ID, i),
			ConversationID: conv.ID,
			Content:        content,
			Source:         conv.Source,
			Title:          conv.Title,
			Index:          i,
		}
	}

	return chunks, nil
}

// Split cuts text into trimmed chunks of at most size characters plus
// breakpoint slack, each overlapping the previous by overlap characters.
// Empty chunks are dropped.
func Split(text string, size, overlap int) ([]string, error) {
	spans, err := Windows(text, size, overlap)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		c := strings.TrimSpace(string(runes[s.Start:s.End]))
		if c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// Span is a half-open rune range [Start, End) within the source text.
type Span struct {
	Start int
	End   int
}

// Windows returns the untrimmed rune ranges Split cuts text into.
// Consecutive windows satisfy next.Start == prev.End - overlap except when
// a short breakpoint window would not advance, in which case next.Start == prev.End.
func Windows(text string, size, overlap int) ([]Span, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n <= size {
		return []Span{{Start: 0, End: n}}, nil
	}

	var spans []Span
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			spans = append(spans, Span{Start: start, End: n})
			break
		}

		for _, bp := range breakpoints {
			bpr := []rune(bp)
			idx := lastIndex(runes, bpr, end)
			// Only accept a break in the second half of the window.
			if idx >= 0 && 2*idx > 2*start+size {
				end = idx + len(bpr)
				break
			}
		}

		spans = append(spans, Span{Start: start, End: end})

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return spans, nil
}

// lastIndex finds the last occurrence of sep that starts at or before from.
func lastIndex(s, sep []rune, from int) int {
	i := from
	if last := len(s) - len(sep); i > last {
		i = last
	}
	for ; i >= 0; i-- {
		if hasPrefixAt(s, sep, i) {
			return i
		}
	}
	return -1
}

func hasPrefixAt(s, sep []rune, at int) bool {
	for j, r := range sep {
		if s[at+j] != r {
			return false
		}
	}
	return true
}

func validate(size, overlap int) error {
	if size <= 0 || overlap < 0 || overlap >= size {
		return ErrInvalidChunkConfig
	}
	return nil
}
