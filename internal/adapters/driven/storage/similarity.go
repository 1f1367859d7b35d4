package storage

import (
	"cmp"
	"math"
	"slices"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK sorts results by descending similarity, breaking ties by id, and
// keeps the first k. A non-positive k keeps nothing.
func TopK(results []domain.SearchResult, k int) []domain.SearchResult {
	if k <= 0 {
		return []domain.SearchResult{}
	}
	slices.SortFunc(results, func(a, b domain.SearchResult) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// CheckDimensions verifies every row in a batch has the same vector length
// as want. A want of 0 adopts the first row's length. It returns the
// resulting dimension.
func CheckDimensions(rows []domain.ChunkRecord, want int) (int, error) {
	for _, r := range rows {
		if len(r.Vector) == 0 {
			return 0, domain.ErrInvalidInput
		}
		if want == 0 {
			want = len(r.Vector)
			continue
		}
		if len(r.Vector) != want {
			return 0, domain.ErrDimensionMismatch
		}
	}
	return want, nil
}
