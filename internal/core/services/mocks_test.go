package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService with deterministic vectors.
type mockEmbedder struct {
	mu        sync.Mutex
	calls     int
	batches   [][]string
	failOn    int // 1-based call that fails; 0 never fails
	err       error
	shortBy   int // drop this many vectors from each batch
	embedErr  error
	lastEmbed string
}

func (m *mockEmbedder) vector(text string) []float32 {
	return []float32{float32(len(text)%7 + 1), float32(strings.Count(text, " ") + 1), 1}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEmbed = text
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, texts)
	if m.failOn != 0 && m.calls == m.failOn {
		if m.err != nil {
			return nil, m.err
		}
		return nil, domain.NewEmbeddingError("mock", errors.New("boom"))
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts[:len(texts)-min(m.shortBy, len(texts))] {
		out = append(out, m.vector(t))
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int             { return 3 }
func (m *mockEmbedder) ModelName() string           { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                { return nil }

// mockStore implements driven.VectorStore with scripted responses.
type mockStore struct {
	mu          sync.Mutex
	upserts     [][]domain.ChunkRecord
	upsertErr   error
	rangeHits   []domain.SearchResult
	rangeErr    error
	hits        []domain.SearchResult
	searchErr   error
	rangeCalls  int
	searchCalls int
	lastTopK    int
	lastFrom    time.Time
	lastTo      time.Time
}

func (m *mockStore) Upsert(_ context.Context, rows []domain.ChunkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, rows)
	return nil
}

func (m *mockStore) Search(_ context.Context, _ []float32, _ string, topK int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastTopK = topK
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockStore) SearchInRange(
	_ context.Context, _ []float32, _ string, topK int, from, to time.Time,
) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rangeCalls++
	m.lastTopK = topK
	m.lastFrom, m.lastTo = from, to
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return m.rangeHits, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) rows() []domain.ChunkRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.ChunkRecord
	for _, b := range m.upserts {
		all = append(all, b...)
	}
	return all
}
