package embedding

import (
	"fmt"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// CheckBatch verifies a provider answered with one vector per input and,
// when dims is positive, that every vector has that length.
func CheckBatch(want int, vectors [][]float32, dims int) error {
	if len(vectors) != want {
		return fmt.Errorf("expected %d embeddings, got %d", want, len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("embedding %d is empty", i)
		}
		if dims > 0 && len(v) != dims {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return nil
}

// Retryable reports whether an HTTP status is worth retrying.
func Retryable(status int) bool {
	return status == 429 || status >= 500
}
