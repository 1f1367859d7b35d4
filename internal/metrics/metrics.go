// Package metrics provides Prometheus metrics for recall.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retrieval paths recorded by RetrievalTotal.
const (
	PathRanged     = "ranged"
	PathRangedMiss = "ranged_miss"
	PathFallback   = "fallback"
	PathUnfiltered = "unfiltered"
)

// Metrics holds all Prometheus metrics for recall.
type Metrics struct {
	// Ingestion metrics
	IngestRunsTotal    *prometheus.CounterVec
	ChunksCreatedTotal prometheus.Counter
	ParseFailuresTotal *prometheus.CounterVec

	// Embedding provider metrics
	EmbeddingRequestsTotal *prometheus.CounterVec
	EmbeddingDuration      *prometheus.HistogramVec

	// Retrieval metrics
	RetrievalTotal *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_ingest_runs_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		ChunksCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recall_chunks_created_total",
				Help: "Total number of chunks embedded and stored",
			},
		),
		ParseFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_parse_failures_total",
				Help: "Total number of uploaded files that failed to parse",
			},
			[]string{"reason"},
		),
		EmbeddingRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_embedding_requests_total",
				Help: "Total number of embedding provider requests",
			},
			[]string{"provider", "outcome"},
		),
		EmbeddingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recall_embedding_duration_seconds",
				Help:    "Duration of embedding provider requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		RetrievalTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_retrieval_total",
				Help: "Total number of retrievals by search path",
			},
			[]string{"path"},
		),
	}
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns the metrics registered with the Prometheus default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New(prometheus.DefaultRegisterer)
	})
	return defaultM
}

// Outcome returns "success" or "error" for a label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
