package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SessionService saves live assistant sessions back into memory.
type SessionService interface {
	// Save stores the session transcript as a single chunk.
	// An empty message list is a no-op.
	Save(ctx context.Context, req domain.SessionRequest) error
}
