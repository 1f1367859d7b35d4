// Package cloudflare provides an embedding service adapter for Cloudflare
// Workers AI.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/util"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Provider is the name used in errors and metrics.
const Provider = "cloudflare"

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.cloudflare.com/client/v4"
	DefaultModel      = "@cf/baai/bge-small-en-v1.5"
	DefaultDimensions = 384
	DefaultTimeout    = 60 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond
)

// Known output sizes of Workers AI embedding models.
var modelDimensions = map[string]int{
	"@cf/baai/bge-small-en-v1.5": 384,
	"@cf/baai/bge-base-en-v1.5":  768,
	"@cf/baai/bge-large-en-v1.5": 1024,
	"@cf/baai/bge-m3":            1024,
}

// Config holds configuration for the Cloudflare embedding service.
type Config struct {
	// AccountID is the Cloudflare account identifier (required).
	AccountID string

	// APIToken is a Workers AI API token (required).
	APIToken string

	// BaseURL is the API base URL (default: https://api.cloudflare.com/client/v4).
	BaseURL string

	// Model is the Workers AI model (default: @cf/baai/bge-small-en-v1.5).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the expected vector size.
	Dimensions int

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64

	// MaxRetries is the number of retries on 429 and 5xx responses.
	MaxRetries int

	// RetryDelay is the base backoff delay (default: 500ms).
	RetryDelay time.Duration
}

// APIError is a non-success answer from the Workers AI API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap maps 429 responses onto domain.ErrRateLimited.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}

// EmbeddingService generates embeddings with Workers AI.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	accountID  string
	model      string
	dimensions int
	maxRetries int
	retryDelay time.Duration
}

// runRequest is the Workers AI request body for text embedding models.
type runRequest struct {
	Text []string `json:"text"`
}

// runResponse is the Workers AI response envelope.
type runResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Shape []int       `json:"shape"`
		Data  [][]float32 `json:"data"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewEmbeddingService creates a new Cloudflare embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("cloudflare: account ID is required")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("cloudflare: API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = modelDimensions[cfg.Model]; !ok {
			dimensions = DefaultDimensions
		}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = cfg.Timeout

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &EmbeddingService{
		client:     client,
		limiter:    limiter,
		baseURL:    cfg.BaseURL,
		accountID:  cfg.AccountID,
		model:      cfg.Model,
		dimensions: dimensions,
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

// EmbedBatch embeds all texts in one call, retrying transient failures.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	log := logger.With("embedding")
	var vectors [][]float32
	err := util.Retry(ctx, s.maxRetries, s.retryDelay, isTransient, func(ctx context.Context) error {
		var err error
		vectors, err = s.run(ctx, texts)
		if err != nil && isTransient(err) {
			log.Debug().Err(err).Str("provider", Provider).Msg("transient embedding failure")
		}
		return err
	})
	if err != nil {
		return nil, domain.NewEmbeddingError(Provider, err)
	}

	if err := embedding.CheckBatch(len(texts), vectors, s.dimensions); err != nil {
		return nil, domain.NewEmbeddingError(Provider, err)
	}
	return vectors, nil
}

func (s *EmbeddingService) run(ctx context.Context, texts []string) ([][]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(runRequest{Text: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.baseURL + "/accounts/" + url.PathEscape(s.accountID) + "/ai/run/" + s.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out runResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if decodeErr == nil && len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: s.model}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !out.Success {
		msg := "request was not successful"
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: s.model}
	}

	return out.Result.Data, nil
}

// isTransient retries rate limits, server errors and network failures,
// but not cancellation.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return embedding.Retryable(apiErr.StatusCode)
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping verifies the API token without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/user/tokens/verify", http.NoBody)
	if err != nil {
		return fmt.Errorf("cloudflare: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudflare: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("cloudflare: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: "tokens/verify"}
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
