package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SettingEntry is a single stored configuration value.
type SettingEntry struct {
	Key   string
	Value any
}

// SettingsService manages persisted application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then stored values, then environment.
	Get() (*domain.Settings, error)

	// Entries lists the stored values in key order.
	Entries() []SettingEntry

	// Set parses raw for key and stores it. The change is rolled back
	// when the resulting settings do not validate.
	Set(key, raw string) error

	// Unset removes a stored key so the default applies again.
	Unset(key string) error

	// SetEmbeddingProvider configures the embedding provider in one step.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that the effective settings are usable for ingestion and retrieval.
	Validate() error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(ctx context.Context) error

	// Path returns where settings are persisted.
	Path() string
}
