package driven

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// PostProcessor turns a conversation into chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a conversation and returns chunks.
	// A processor that creates chunks (e.g., chunker) receives nil.
	// A processor that refines chunks receives and returns them.
	Process(ctx context.Context, conv *domain.Conversation, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the conversation through all processors in order.
	Process(ctx context.Context, conv *domain.Conversation) ([]domain.Chunk, error)
}
