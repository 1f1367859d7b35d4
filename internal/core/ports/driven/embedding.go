package driven

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - Cloudflare Workers AI (@cf/baai/bge-small-en-v1.5)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Gemini (gemini-embedding-001)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request.
	// The result has the same length and order as texts. A provider that
	// answers with a different count fails with a domain.EmbeddingError.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingValidator checks that an embedding configuration can reach its provider.
type EmbeddingValidator interface {
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
}
