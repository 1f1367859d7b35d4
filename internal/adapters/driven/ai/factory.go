// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding"
	cfembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/cloudflare"
	geminiembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/metrics"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, m *metrics.Metrics) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings, m)
	if err != nil {
		return nil, err
	}

	if err := PingEmbeddingService(ctx, svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'recall config check' to diagnose",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings, nil)
	if err != nil {
		return err
	}
	defer svc.Close()
	return PingEmbeddingService(ctx, svc)
}

// PingEmbeddingService checks connectivity, giving up after pingTimeout.
func PingEmbeddingService(ctx context.Context, svc driven.EmbeddingService) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// When m is non-nil the service is wrapped to record request metrics.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, m *metrics.Metrics) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}

	var (
		svc driven.EmbeddingService
		err error
	)

	switch settings.Provider {
	case domain.AIProviderCloudflare:
		svc, err = cfembed.NewEmbeddingService(cfembed.Config{
			AccountID:         settings.AccountID,
			APIToken:          settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
			MaxRetries:        settings.MaxRetries,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
			MaxRetries:        settings.MaxRetries,
		})

	case domain.AIProviderGemini:
		svc, err = geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
			MaxRetries:        settings.MaxRetries,
		})

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			MaxRetries: settings.MaxRetries,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if m != nil {
		svc = embedding.Instrument(svc, settings.Provider.String(), m)
	}
	return svc, nil
}
