package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// It is used for tests and for `recall serve` without persistence.
type VectorStore struct {
	mu     sync.RWMutex
	owners map[string]*ownerRows
}

// ownerRows holds one owner's chunks. All vectors share dim.
type ownerRows struct {
	dim  int
	rows map[string]domain.ChunkRecord
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{owners: make(map[string]*ownerRows)}
}

// Upsert stores rows, overwriting any with the same owner and chunk id.
// A batch is applied entirely or not at all.
func (s *VectorStore) Upsert(ctx context.Context, rows []domain.ChunkRecord) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("upsert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byOwner := make(map[string][]domain.ChunkRecord)
	for _, r := range rows {
		byOwner[r.OwnerID] = append(byOwner[r.OwnerID], r)
	}

	dims := make(map[string]int, len(byOwner))
	for owner, batch := range byOwner {
		want := 0
		if o, ok := s.owners[owner]; ok {
			want = o.dim
		}
		dim, err := storage.CheckDimensions(batch, want)
		if err != nil {
			return domain.NewStoreError("upsert", err)
		}
		dims[owner] = dim
	}

	for owner, batch := range byOwner {
		o, ok := s.owners[owner]
		if !ok {
			o = &ownerRows{rows: make(map[string]domain.ChunkRecord)}
			s.owners[owner] = o
		}
		o.dim = dims[owner]
		for _, r := range batch {
			r.Vector = append([]float32(nil), r.Vector...)
			o.rows[r.ID] = r
		}
	}
	return nil
}

// Search returns the owner's topK rows most similar to query.
func (s *VectorStore) Search(ctx context.Context, query []float32, ownerID string, topK int) ([]domain.SearchResult, error) {
	return s.search(ctx, "search", query, ownerID, topK, nil)
}

// SearchInRange is Search over rows created within [from, to].
func (s *VectorStore) SearchInRange(
	ctx context.Context,
	query []float32,
	ownerID string,
	topK int,
	from, to time.Time,
) ([]domain.SearchResult, error) {
	inRange := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }
	return s.search(ctx, "search_in_range", query, ownerID, topK, inRange)
}

func (s *VectorStore) search(
	ctx context.Context,
	op string,
	query []float32,
	ownerID string,
	topK int,
	filter func(time.Time) bool,
) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.owners[ownerID]
	if !ok {
		return []domain.SearchResult{}, nil
	}
	if len(query) != o.dim {
		return nil, domain.NewStoreError(op, domain.ErrDimensionMismatch)
	}

	results := make([]domain.SearchResult, 0, len(o.rows))
	for _, r := range o.rows {
		if filter != nil && !filter(r.CreatedAt) {
			continue
		}
		res := domain.SearchResult{
			ID:             r.ID,
			Content:        r.Content,
			Source:         r.Source,
			Title:          r.Title,
			ConversationID: r.ConversationID,
			Similarity:     storage.Cosine(query, r.Vector),
		}
		if filter != nil {
			created := r.CreatedAt
			res.CreatedAt = &created
		}
		results = append(results, res)
	}
	return storage.TopK(results, topK), nil
}

// Len returns the number of rows stored for an owner.
func (s *VectorStore) Len(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.owners[ownerID]; ok {
		return len(o.rows)
	}
	return 0
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}
