package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/metrics"
	"github.com/custodia-labs/recall/internal/temporal"
	"github.com/custodia-labs/recall/internal/util"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService combines temporal filtering with similarity search.
// A failing ranged search degrades to an unfiltered one.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		log:      logger.With("retrieval"),
	}
}

// SetMetrics enables metric recording.
func (s *RetrievalService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Retrieve embeds the query once and searches the owner's chunks.
func (s *RetrievalService) Retrieve(
	ctx context.Context,
	query, ownerID string,
	rng *domain.TemporalRange,
) (*domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: query and owner are required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	if rng != nil {
		results, err := s.store.SearchInRange(ctx, vector, ownerID, domain.RangedTopK, rng.From, rng.To)
		if err == nil {
			if len(results) == 0 {
				s.record(metrics.PathRangedMiss)
				s.log.Debug().Str("range", rng.Description).Msg("no memories in range")
				return &domain.RetrievalResult{Content: []domain.SearchResult{}, HadTemporalMiss: true}, nil
			}
			s.record(metrics.PathRanged)
			return &domain.RetrievalResult{Content: results}, nil
		}

		s.log.Warn().Err(err).Str("range", rng.Description).Msg("ranged search failed, falling back")
		s.record(metrics.PathFallback)
	} else {
		s.record(metrics.PathUnfiltered)
	}

	results, err := s.store.Search(ctx, vector, ownerID, domain.UnfilteredTopK)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return &domain.RetrievalResult{Content: results}, nil
}

// RetrieveForMessage derives the temporal range from the message, or the
// query when no message is given, and retrieves.
func (s *RetrievalService) RetrieveForMessage(
	ctx context.Context,
	req domain.RetrieveRequest,
	now time.Time,
) (*domain.RetrievalResult, error) {
	if err := util.Validate(req); err != nil {
		return nil, err
	}

	text := req.Message
	if strings.TrimSpace(text) == "" {
		text = req.Query
	}

	rng := temporal.Parse(text, now)
	if rng != nil {
		s.log.Debug().
			Str("range", rng.Description).
			Time("from", rng.From).
			Time("to", rng.To).
			Msg("temporal intent")
	}
	return s.Retrieve(ctx, req.Query, req.OwnerID, rng)
}

func (s *RetrievalService) record(path string) {
	if s.metrics != nil {
		s.metrics.RetrievalTotal.WithLabelValues(path).Inc()
	}
}
