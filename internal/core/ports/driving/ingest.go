package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// IngestService turns uploaded export files into stored, embedded chunks.
type IngestService interface {
	// Ingest parses, chunks, embeds and stores the uploads.
	// Pipeline failures are reported in the result, never as an error.
	// An error is returned only for an invalid request.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}
