package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/recall/internal/config"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
	envFiles    []string
}

// NewSettingsService creates a new settings service.
// envFiles are forwarded to config.Load.
func NewSettingsService(
	configStore driven.ConfigStore,
	validator driven.EmbeddingValidator,
	envFiles ...string,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		envFiles:    envFiles,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings, err := config.Load(s.configStore, s.envFiles...)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Entries lists the stored values in key order.
func (s *SettingsService) Entries() []driving.SettingEntry {
	keys := s.configStore.Keys()
	entries := make([]driving.SettingEntry, 0, len(keys))
	for _, k := range keys {
		v, _ := s.configStore.Get(k)
		entries = append(entries, driving.SettingEntry{Key: k, Value: v})
	}
	return entries
}

// Set parses and stores a value, restoring the previous one if the
// resulting settings are invalid.
func (s *SettingsService) Set(key, raw string) error {
	value, err := config.ParseValue(key, raw)
	if err != nil {
		return err
	}

	prev, had := s.configStore.Get(key)
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if _, err := s.Get(); err != nil {
		if had {
			_ = s.configStore.Set(key, prev)
		} else {
			_ = s.configStore.Unset(key)
		}
		return err
	}
	return nil
}

// Unset removes a stored key.
func (s *SettingsService) Unset(key string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if err := s.configStore.Set(config.KeyEmbeddingProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if model != "" {
		if err := s.configStore.Set(config.KeyEmbeddingModel, model); err != nil {
			return fmt.Errorf("save embedding model: %w", err)
		}
	} else if err := s.configStore.Unset(config.KeyEmbeddingModel); err != nil {
		return fmt.Errorf("reset embedding model: %w", err)
	}

	// Cloud providers use their own endpoints; a stale local URL would break them.
	if !provider.IsLocal() {
		if err := s.configStore.Unset(config.KeyEmbeddingBaseURL); err != nil {
			return fmt.Errorf("reset embedding base_url: %w", err)
		}
	}

	if apiKey != "" {
		if err := s.configStore.Set(config.KeyEmbeddingAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is missing credentials",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	return nil
}

// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(ctx, &settings.Embedding)
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}
