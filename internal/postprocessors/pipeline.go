// Package postprocessors turns parsed conversations into chunks through a
// configurable chain of processors.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// ErrNilConversation is returned when the pipeline is given no conversation.
var ErrNilConversation = errors.New("conversation is nil")

// Pipeline chains PostProcessors and runs them in order.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline executing processors in the order given.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the conversation through every processor.
// The first processor receives nil chunks and creates them.
func (p *Pipeline) Process(ctx context.Context, conv *domain.Conversation) ([]domain.Chunk, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	var chunks []domain.Chunk
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		chunks, err = processor.Process(ctx, conv, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
