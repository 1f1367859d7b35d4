package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/core/domain"
)

// noEnvFile points godotenv at a path that does not exist.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

// clearEnv blanks every variable Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvEmbeddingProvider, EnvCloudflareAccount, EnvCloudflareToken, EnvOpenAIKey,
		EnvGeminiKey, EnvOllamaBaseURL, EnvStore, EnvDatabaseURL, EnvOwner, EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load(nil, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestLoad_StoreOverridesDefaults(t *testing.T) {
	clearEnv(t)
	store := memory.NewConfigStore(map[string]any{
		KeyOwner:             "anna",
		KeyEmbeddingProvider: "ollama",
		KeyEmbeddingRPS:      int64(2),
		KeyStoreKind:         "memory",
		KeyChunkSize:         int64(500),
		KeyChunkOverlap:      int64(50),
		KeyIngestFallback:    false,
		KeyServerShutdown:    "3s",
	})

	s, err := Load(store, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "anna", s.Owner)
	assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
	assert.Equal(t, 2.0, s.Embedding.RequestsPerSecond)
	assert.Equal(t, domain.StoreMemory, s.Store.Kind)
	assert.Equal(t, 500, s.Chunker.ChunkSize)
	assert.Equal(t, 50, s.Chunker.Overlap)
	assert.False(t, s.Ingest.FallbackPlaintext)
	assert.Equal(t, 3*time.Second, s.Server.ShutdownTimeout)
}

func TestLoad_EnvOverridesStore(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOwner, "env-owner")
	t.Setenv(EnvEmbeddingProvider, "cloudflare")
	t.Setenv(EnvCloudflareAccount, "acct")
	t.Setenv(EnvCloudflareToken, "token")
	t.Setenv(EnvOpenAIKey, "ignored")

	store := memory.NewConfigStore(map[string]any{KeyOwner: "file-owner"})

	s, err := Load(store, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "env-owner", s.Owner)
	assert.Equal(t, "acct", s.Embedding.AccountID)
	assert.Equal(t, "token", s.Embedding.APIKey)
	assert.True(t, s.Embedding.IsConfigured())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvOpenAIKey)
	os.Unsetenv(EnvEmbeddingProvider)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECALL_EMBEDDING_PROVIDER=openai\nOPENAI_API_KEY=sk-dotenv\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv(EnvOpenAIKey)
		os.Unsetenv(EnvEmbeddingProvider)
	})

	s, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "sk-dotenv", s.Embedding.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"unknown store", map[string]any{KeyStoreKind: "redis"}},
		{"postgres without url", map[string]any{KeyStoreKind: "postgres"}},
		{"overlap not below size", map[string]any{KeyChunkSize: int64(100), KeyChunkOverlap: int64(100)}},
		{"unknown provider", map[string]any{KeyEmbeddingProvider: "anthropic"}},
		{"bad duration", map[string]any{KeyServerShutdown: "soon"}},
		{"bad rps", map[string]any{KeyEmbeddingRPS: "fast"}},
		{"empty owner", map[string]any{KeyOwner: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(memory.NewConfigStore(tt.values), noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ValidationWrapsInvalidInput(t *testing.T) {
	clearEnv(t)
	_, err := Load(memory.NewConfigStore(map[string]any{KeyStoreKind: "redis"}), noEnvFile(t))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		key  string
		raw  string
		want any
	}{
		{KeyOwner, "alice", "alice"},
		{KeyChunkSize, "800", 800},
		{KeyEmbeddingRPS, "2.5", 2.5},
		{KeyIngestFallback, "false", false},
		{KeyServerShutdown, "30s", "30s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseValue(tt.key, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValue_Errors(t *testing.T) {
	for _, tc := range [][2]string{
		{"nope", "x"},
		{KeyChunkSize, "big"},
		{KeyEmbeddingRPS, "fast"},
		{KeyLogPretty, "maybe"},
		{KeyServerShutdown, "later"},
	} {
		_, err := ParseValue(tc[0], tc[1])
		assert.ErrorIs(t, err, domain.ErrInvalidInput, tc[0])
	}
}

func TestIsSecret(t *testing.T) {
	assert.True(t, IsSecret(KeyEmbeddingAPIKey))
	assert.True(t, IsSecret(KeyStoreDatabaseURL))
	assert.False(t, IsSecret(KeyOwner))
}

func TestIsKnownKey(t *testing.T) {
	for _, k := range AllKeys {
		assert.True(t, IsKnownKey(k), k)
	}
	assert.False(t, IsKnownKey("search.mode"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("short"))
	assert.Equal(t, "****", Mask("12345678"))
	assert.Equal(t, "sk-a...wxyz", Mask("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "sk-a...wxyz", Display(KeyEmbeddingAPIKey, "sk-abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "", Display(KeyEmbeddingAPIKey, ""))
	assert.Equal(t, "800", Display(KeyChunkSize, 800))
	assert.Equal(t, "alice", Display(KeyOwner, "alice"))
}
