package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/config"
	"github.com/custodia-labs/recall/internal/core/domain"
)

// mockValidator records the settings it was asked to validate.
type mockValidator struct {
	err  error
	seen *domain.EmbeddingSettings
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, s *domain.EmbeddingSettings) error {
	m.seen = s
	return m.err
}

func newTestSettingsService(t *testing.T, seed map[string]any) (*SettingsService, *memory.ConfigStore) {
	t.Helper()
	for _, k := range []string{
		config.EnvEmbeddingProvider, config.EnvCloudflareAccount, config.EnvCloudflareToken,
		config.EnvOpenAIKey, config.EnvGeminiKey, config.EnvOllamaBaseURL, config.EnvStore,
		config.EnvDatabaseURL, config.EnvOwner, config.EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
	store := memory.NewConfigStore(seed)
	return NewSettingsService(store, nil, filepath.Join(t.TempDir(), "missing.env")), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(t, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Owner, settings.Owner)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Chunker, settings.Chunker)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newTestSettingsService(t, map[string]any{
		config.KeyEmbeddingProvider: "openai",
		config.KeyEmbeddingModel:    "text-embedding-3-large",
	})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettingsService(t, nil)

	require.NoError(t, service.Set(config.KeyChunkSize, "800"))
	assert.Equal(t, 800, store.GetInt(config.KeyChunkSize))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 800, settings.Chunker.ChunkSize)
}

func TestSettingsService_Set_UnknownKey(t *testing.T) {
	service, store := newTestSettingsService(t, nil)

	err := service.Set("search.mode", "hybrid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Keys())
}

func TestSettingsService_Set_RollsBackInvalidResult(t *testing.T) {
	t.Run("new key is removed", func(t *testing.T) {
		service, store := newTestSettingsService(t, nil)

		// Overlap must stay below the 1000 default chunk size.
		err := service.Set(config.KeyChunkOverlap, "1000")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, ok := store.Get(config.KeyChunkOverlap)
		assert.False(t, ok)
	})

	t.Run("previous value is restored", func(t *testing.T) {
		service, store := newTestSettingsService(t, map[string]any{config.KeyStoreKind: "memory"})

		err := service.Set(config.KeyStoreKind, "redis")
		assert.Error(t, err)
		assert.Equal(t, "memory", store.GetString(config.KeyStoreKind))
	})
}

func TestSettingsService_Unset(t *testing.T) {
	service, store := newTestSettingsService(t, map[string]any{config.KeyOwner: "alice"})

	require.NoError(t, service.Unset(config.KeyOwner))
	_, ok := store.Get(config.KeyOwner)
	assert.False(t, ok)

	assert.ErrorIs(t, service.Unset("nope"), domain.ErrInvalidInput)
}

func TestSettingsService_Entries(t *testing.T) {
	service, _ := newTestSettingsService(t, map[string]any{
		config.KeyOwner:          "alice",
		config.KeyEmbeddingModel: "m",
	})

	entries := service.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, config.KeyEmbeddingModel, entries[0].Key)
	assert.Equal(t, config.KeyOwner, entries[1].Key)
	assert.Equal(t, "alice", entries[1].Value)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("cloud provider clears base url", func(t *testing.T) {
		service, store := newTestSettingsService(t, map[string]any{
			config.KeyEmbeddingBaseURL: "http://localhost:11434",
		})

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))
		assert.Equal(t, "openai", store.GetString(config.KeyEmbeddingProvider))
		assert.Equal(t, "sk-test", store.GetString(config.KeyEmbeddingAPIKey))
		_, ok := store.Get(config.KeyEmbeddingBaseURL)
		assert.False(t, ok)
	})

	t.Run("local provider keeps base url", func(t *testing.T) {
		service, store := newTestSettingsService(t, map[string]any{
			config.KeyEmbeddingBaseURL: "http://gpu:11434",
		})

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "nomic-embed-text", ""))
		assert.Equal(t, "http://gpu:11434", store.GetString(config.KeyEmbeddingBaseURL))
		assert.Equal(t, "nomic-embed-text", store.GetString(config.KeyEmbeddingModel))
	})

	t.Run("missing api key", func(t *testing.T) {
		service, _ := newTestSettingsService(t, nil)
		err := service.SetEmbeddingProvider(domain.AIProviderGemini, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid provider", func(t *testing.T) {
		service, _ := newTestSettingsService(t, nil)
		err := service.SetEmbeddingProvider("anthropic", "", "key")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_Validate(t *testing.T) {
	service, _ := newTestSettingsService(t, nil)
	assert.ErrorIs(t, service.Validate(), domain.ErrEmbeddingUnavailable)

	service, _ = newTestSettingsService(t, map[string]any{config.KeyEmbeddingProvider: "ollama"})
	assert.NoError(t, service.Validate())
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	service, store := newTestSettingsService(t, map[string]any{config.KeyEmbeddingProvider: "ollama"})

	// Without a validator nothing is checked.
	assert.NoError(t, service.ValidateEmbeddingConfig(context.Background()))

	validator := &mockValidator{err: errors.New("unreachable")}
	service = NewSettingsService(store, validator, filepath.Join(t.TempDir(), "missing.env"))
	err := service.ValidateEmbeddingConfig(context.Background())
	assert.EqualError(t, err, "unreachable")
	require.NotNil(t, validator.seen)
	assert.Equal(t, domain.AIProviderOllama, validator.seen.Provider)
}

func TestSettingsService_Path(t *testing.T) {
	service, _ := newTestSettingsService(t, nil)
	assert.Empty(t, service.Path())
}
