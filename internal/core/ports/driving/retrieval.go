package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// RetrievalService finds stored memories relevant to a query.
type RetrievalService interface {
	// Retrieve embeds the query and searches the owner's chunks.
	// A nil range performs an unfiltered search.
	Retrieve(ctx context.Context, query, ownerID string, rng *domain.TemporalRange) (*domain.RetrievalResult, error)

	// RetrieveForMessage derives the temporal range from the request message
	// (or the query when no message is given) and then retrieves.
	RetrieveForMessage(ctx context.Context, req domain.RetrieveRequest, now time.Time) (*domain.RetrievalResult, error)
}
