package embedding

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/metrics"
)

// Ensure Instrumented implements the interface.
var _ driven.EmbeddingService = (*Instrumented)(nil)

// Instrumented records request counts and latency for an embedding service.
type Instrumented struct {
	driven.EmbeddingService
	provider string
	metrics  *metrics.Metrics
}

// Instrument wraps svc so every Embed and EmbedBatch call is measured.
func Instrument(svc driven.EmbeddingService, provider string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{EmbeddingService: svc, provider: provider, metrics: m}
}

// Embed measures a single embedding request.
func (s *Instrumented) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := s.EmbeddingService.Embed(ctx, text)
	s.observe(start, err)
	return v, err
}

// EmbedBatch measures a batch embedding request.
func (s *Instrumented) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	v, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	s.observe(start, err)
	return v, err
}

func (s *Instrumented) observe(start time.Time, err error) {
	s.metrics.EmbeddingDuration.WithLabelValues(s.provider).Observe(time.Since(start).Seconds())
	s.metrics.EmbeddingRequestsTotal.WithLabelValues(s.provider, metrics.Outcome(err)).Inc()
}
