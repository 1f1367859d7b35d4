package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/metrics"
	"github.com/custodia-labs/recall/internal/util"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService parses uploads, chunks them, embeds the chunks in batches
// and upserts them into the vector store.
type IngestService struct {
	parsers  driven.ParserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	store    driven.VectorStore
	cfg      domain.IngestSettings
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// NewIngestService creates a new ingestion service.
// The embedder may be nil; runs that produce chunks then fail with
// domain.ErrEmbeddingUnavailable.
func NewIngestService(
	parsers driven.ParserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	cfg domain.IngestSettings,
) *IngestService {
	defaults := domain.DefaultSettings().Ingest
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	return &IngestService{
		parsers:  parsers,
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
		log:      logger.With("ingest"),
	}
}

// SetMetrics enables metric recording.
func (s *IngestService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetClock overrides the time source used for chunks without a creation date.
func (s *IngestService) SetClock(now func() time.Time) {
	s.now = now
}

// parsed is the outcome of parsing one upload.
type parsed struct {
	convs  []domain.Conversation
	failed bool
}

// Ingest runs the full pipeline. Pipeline failures are reported in the
// result; an error is returned only when the request itself is invalid.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if err := util.Validate(req); err != nil {
		return nil, err
	}

	logger.Section("Ingestion")
	s.log.Info().Str("owner", req.OwnerID).Int("files", len(req.Files)).Msg("ingest started")

	result := &domain.IngestResult{}
	convs := s.parseAll(ctx, req.Files, result)
	if err := ctx.Err(); err != nil {
		return s.fail(result, err), nil
	}
	convs = distinctConversations(convs)
	result.ConversationsProcessed = len(convs)

	if len(convs) == 0 {
		result.Success = true
		s.finish(result)
		return result, nil
	}

	var (
		chunks  []domain.Chunk
		created []time.Time
	)
	ingestedAt := s.now()
	seen := make(map[string]struct{})
	for i := range convs {
		cs, err := s.pipeline.Process(ctx, &convs[i])
		if err != nil {
			return s.fail(result, fmt.Errorf("chunking %s: %w", convs[i].ID, err)), nil
		}
		at := ingestedAt
		if convs[i].CreatedAt != nil {
			at = *convs[i].CreatedAt
		}
		for _, c := range cs {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			chunks = append(chunks, c)
			created = append(created, at)
		}
	}

	if len(chunks) == 0 {
		result.Success = true
		s.finish(result)
		return result, nil
	}

	if s.embedder == nil {
		return s.fail(result, domain.ErrEmbeddingUnavailable), nil
	}

	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return s.fail(result, err), nil
		}

		end := min(start+s.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return s.fail(result, err), nil
		}
		if len(vectors) != len(batch) {
			err := fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
			return s.fail(result, domain.NewEmbeddingError(s.embedder.ModelName(), err)), nil
		}

		rows := make([]domain.ChunkRecord, len(batch))
		for i, c := range batch {
			rows[i] = domain.ChunkRecord{
				Chunk:     c,
				OwnerID:   req.OwnerID,
				Vector:    vectors[i],
				CreatedAt: created[start+i],
			}
		}
		if err := s.store.Upsert(ctx, rows); err != nil {
			return s.fail(result, err), nil
		}

		result.ChunksCreated += len(rows)
		if s.metrics != nil {
			s.metrics.ChunksCreatedTotal.Add(float64(len(rows)))
		}
		logger.Debug("Stored batch %d-%d of %d", start, end, len(chunks))
	}

	result.Success = true
	s.finish(result)
	return result, nil
}

// distinctConversations drops conversations whose ID already appeared
// earlier in convs, keeping the first.
func distinctConversations(convs []domain.Conversation) []domain.Conversation {
	seen := make(map[string]struct{}, len(convs))
	out := convs[:0]
	for _, c := range convs {
		if _, dup := seen[c.ID]; dup {
			logger.Debug("skipping repeated conversation %s", c.ID)
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// parseAll parses uploads with a bounded worker pool and returns the
// conversations in upload order.
func (s *IngestService) parseAll(ctx context.Context, files []domain.Upload, result *domain.IngestResult) []domain.Conversation {
	out := make([]parsed, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(s.cfg.Workers, len(files)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = s.parseOne(ctx, files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var convs []domain.Conversation
	for _, p := range out {
		if p.failed {
			result.FilesFailed++
			continue
		}
		convs = append(convs, p.convs...)
	}
	return convs
}

func (s *IngestService) parseOne(ctx context.Context, f domain.Upload) parsed {
	content := []byte(f.Content)

	convs, err := s.parsers.Parse(ctx, content, f.Filename)
	if err == nil {
		s.log.Debug().Str("file", f.Filename).Int("conversations", len(convs)).Msg("parsed")
		return parsed{convs: convs}
	}

	if s.metrics != nil {
		s.metrics.ParseFailuresTotal.WithLabelValues(parseFailureReason(err)).Inc()
	}
	s.log.Warn().Err(err).Str("file", f.Filename).Msg("parse failed")

	if s.cfg.FallbackPlaintext {
		if convs := s.parsers.Fallback(content, f.Filename); len(convs) > 0 {
			s.log.Info().Str("file", f.Filename).Msg("ingesting as plain text")
			return parsed{convs: convs}
		}
	}
	return parsed{failed: true}
}

func parseFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, domain.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

// fail marks the result as failed, keeping the counts reached so far.
func (s *IngestService) fail(result *domain.IngestResult, err error) *domain.IngestResult {
	result.Success = false
	result.Error = err.Error()
	s.log.Error().Err(err).
		Int("conversations", result.ConversationsProcessed).
		Int("chunks", result.ChunksCreated).
		Msg("ingest aborted")
	if s.metrics != nil {
		s.metrics.IngestRunsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	}
	return result
}

func (s *IngestService) finish(result *domain.IngestResult) {
	s.log.Info().
		Int("conversations", result.ConversationsProcessed).
		Int("chunks", result.ChunksCreated).
		Int("files_failed", result.FilesFailed).
		Msg("ingest complete")
	if s.metrics != nil {
		s.metrics.IngestRunsTotal.WithLabelValues(metrics.Outcome(nil)).Inc()
	}
}
