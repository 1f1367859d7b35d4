package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// VectorStore persists chunk rows with their embeddings and answers
// nearest-neighbour queries scoped to a single owner.
//
// Both search variants fail with a domain.StoreError when the backend is
// unreachable. An empty result always means there were no matches.
type VectorStore interface {
	// Upsert inserts or overwrites rows keyed by chunk ID.
	Upsert(ctx context.Context, rows []domain.ChunkRecord) error

	// Search returns up to topK rows for the owner ranked by descending
	// cosine similarity.
	Search(ctx context.Context, query []float32, ownerID string, topK int) ([]domain.SearchResult, error)

	// SearchInRange is Search restricted to rows created within [from, to].
	// Results carry CreatedAt.
	SearchInRange(
		ctx context.Context,
		query []float32,
		ownerID string,
		topK int,
		from, to time.Time,
	) ([]domain.SearchResult, error)

	// Close releases resources.
	Close() error
}
