// Package gemini provides an embedding service adapter using the Google
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/util"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Provider is the name used in errors and metrics.
const Provider = "gemini"

// Default configuration values.
const (
	DefaultModel      = "gemini-embedding-001"
	DefaultDimensions = 768
	DefaultTimeout    = 60 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model (default: gemini-embedding-001).
	Model string

	// Dimensions is the requested output size (default: 768).
	Dimensions int

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64

	// MaxRetries is the number of retries on 429 and 5xx responses.
	MaxRetries int

	// RetryDelay is the base backoff delay (default: 500ms).
	RetryDelay time.Duration
}

// EmbeddingService generates embeddings with the Gemini API.
type EmbeddingService struct {
	client     *genai.Client
	limiter    *rate.Limiter
	model      string
	dimensions int
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to initialize client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &EmbeddingService{
		client:     client,
		limiter:    limiter,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one EmbedContent call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	outputDim := int32(s.dimensions)
	embedCfg := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
		TaskType:             "RETRIEVAL_DOCUMENT",
	}

	var result *genai.EmbedContentResponse
	err := util.Retry(ctx, s.maxRetries, s.retryDelay, isTransient, func(ctx context.Context) error {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		result, err = s.client.Models.EmbedContent(callCtx, s.model, contents, embedCfg)
		return err
	})
	if err != nil {
		if statusCode(err) == http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
		return nil, domain.NewEmbeddingError(Provider, err)
	}

	var vectors [][]float32
	if result != nil {
		vectors = make([][]float32, 0, len(result.Embeddings))
		for _, e := range result.Embeddings {
			if e == nil {
				vectors = append(vectors, nil)
				continue
			}
			vectors = append(vectors, e.Values)
		}
	}

	if err := embedding.CheckBatch(len(texts), vectors, s.dimensions); err != nil {
		return nil, domain.NewEmbeddingError(Provider, err)
	}
	return vectors, nil
}

// statusCode extracts the HTTP status from a genai API error.
func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	// A per-call timeout is worth another attempt while the parent context lives.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return embedding.Retryable(statusCode(err))
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata, which validates the key without inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
