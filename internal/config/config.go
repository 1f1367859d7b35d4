// Package config assembles runtime settings from built-in defaults, the
// TOML config store and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/util"
)

// Environment variables read by Load.
const (
	EnvEmbeddingProvider = "RECALL_EMBEDDING_PROVIDER"
	EnvCloudflareAccount = "CLOUDFLARE_ACCOUNT_ID"
	EnvCloudflareToken   = "CLOUDFLARE_API_TOKEN"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvGeminiKey         = "GEMINI_API_KEY"
	EnvOllamaBaseURL     = "OLLAMA_BASE_URL"
	EnvStore             = "RECALL_STORE"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvOwner             = "RECALL_OWNER"
	EnvLogLevel          = "RECALL_LOG_LEVEL"
)

// Keys understood by the config store.
const (
	KeyOwner               = "owner"
	KeyLogLevel            = "log_level"
	KeyLogPretty           = "log_pretty"
	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingAPIKey     = "embedding.api_key"
	KeyEmbeddingAccountID  = "embedding.account_id"
	KeyEmbeddingDimensions = "embedding.dimensions"
	KeyEmbeddingRPS        = "embedding.requests_per_second"
	KeyEmbeddingRetries    = "embedding.max_retries"
	KeyStoreKind           = "store.kind"
	KeyStoreDataDir        = "store.data_dir"
	KeyStoreDatabaseURL    = "store.database_url"
	KeyChunkSize           = "chunker.chunk_size"
	KeyChunkOverlap        = "chunker.overlap"
	KeyIngestBatchSize     = "ingest.batch_size"
	KeyIngestWorkers       = "ingest.workers"
	KeyIngestFallback      = "ingest.fallback_plaintext"
	KeyServerAddr          = "server.addr"
	KeyServerShutdown      = "server.shutdown_timeout"
)

// AllKeys lists every key in display order.
var AllKeys = []string{
	KeyOwner, KeyLogLevel, KeyLogPretty,
	KeyEmbeddingProvider, KeyEmbeddingModel, KeyEmbeddingBaseURL, KeyEmbeddingAPIKey,
	KeyEmbeddingAccountID, KeyEmbeddingDimensions, KeyEmbeddingRPS, KeyEmbeddingRetries,
	KeyStoreKind, KeyStoreDataDir, KeyStoreDatabaseURL,
	KeyChunkSize, KeyChunkOverlap,
	KeyIngestBatchSize, KeyIngestWorkers, KeyIngestFallback,
	KeyServerAddr, KeyServerShutdown,
}

// IsKnownKey reports whether key is understood by Load.
func IsKnownKey(key string) bool {
	return slices.Contains(AllKeys, key)
}

// Load builds validated settings. envFiles are passed to godotenv; when
// none are given ".env" in the working directory is tried. Missing env
// files are ignored and variables already set in the process win.
func Load(store driven.ConfigStore, envFiles ...string) (domain.Settings, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return domain.Settings{}, err
	}

	s := domain.DefaultSettings()
	if store != nil {
		if err := applyStore(&s, store); err != nil {
			return domain.Settings{}, err
		}
	}
	applyEnv(&s)

	if err := util.Validate(s); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func applyStore(s *domain.Settings, store driven.ConfigStore) error {
	setString(store, KeyOwner, &s.Owner)
	setString(store, KeyLogLevel, &s.LogLevel)
	setBool(store, KeyLogPretty, &s.LogPretty)

	var provider string
	if setString(store, KeyEmbeddingProvider, &provider) {
		s.Embedding.Provider = domain.AIProvider(provider)
	}
	setString(store, KeyEmbeddingModel, &s.Embedding.Model)
	setString(store, KeyEmbeddingBaseURL, &s.Embedding.BaseURL)
	setString(store, KeyEmbeddingAPIKey, &s.Embedding.APIKey)
	setString(store, KeyEmbeddingAccountID, &s.Embedding.AccountID)
	setInt(store, KeyEmbeddingDimensions, &s.Embedding.Dimensions)
	setInt(store, KeyEmbeddingRetries, &s.Embedding.MaxRetries)
	if v, ok := store.Get(KeyEmbeddingRPS); ok {
		f, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyEmbeddingRPS, err)
		}
		s.Embedding.RequestsPerSecond = f
	}

	var kind string
	if setString(store, KeyStoreKind, &kind) {
		s.Store.Kind = domain.StoreKind(kind)
	}
	setString(store, KeyStoreDataDir, &s.Store.DataDir)
	setString(store, KeyStoreDatabaseURL, &s.Store.DatabaseURL)

	setInt(store, KeyChunkSize, &s.Chunker.ChunkSize)
	setInt(store, KeyChunkOverlap, &s.Chunker.Overlap)

	setInt(store, KeyIngestBatchSize, &s.Ingest.BatchSize)
	setInt(store, KeyIngestWorkers, &s.Ingest.Workers)
	setBool(store, KeyIngestFallback, &s.Ingest.FallbackPlaintext)

	setString(store, KeyServerAddr, &s.Server.Addr)
	var shutdown string
	if setString(store, KeyServerShutdown, &shutdown) {
		d, err := time.ParseDuration(shutdown)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyServerShutdown, err)
		}
		s.Server.ShutdownTimeout = d
	}
	return nil
}

func applyEnv(s *domain.Settings) {
	if v := os.Getenv(EnvOwner); v != "" {
		s.Owner = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvEmbeddingProvider); v != "" {
		s.Embedding.Provider = domain.AIProvider(v)
	}
	if v := os.Getenv(EnvStore); v != "" {
		s.Store.Kind = domain.StoreKind(v)
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		s.Store.DatabaseURL = v
	}

	// Provider credentials apply only to the selected provider.
	switch s.Embedding.Provider {
	case domain.AIProviderCloudflare:
		if v := os.Getenv(EnvCloudflareAccount); v != "" {
			s.Embedding.AccountID = v
		}
		if v := os.Getenv(EnvCloudflareToken); v != "" {
			s.Embedding.APIKey = v
		}
	case domain.AIProviderOpenAI:
		if v := os.Getenv(EnvOpenAIKey); v != "" {
			s.Embedding.APIKey = v
		}
	case domain.AIProviderGemini:
		if v := os.Getenv(EnvGeminiKey); v != "" {
			s.Embedding.APIKey = v
		}
	case domain.AIProviderOllama:
		if v := os.Getenv(EnvOllamaBaseURL); v != "" {
			s.Embedding.BaseURL = v
		}
	}
}

func setString(store driven.ConfigStore, key string, dst *string) bool {
	if _, ok := store.Get(key); !ok {
		return false
	}
	*dst = store.GetString(key)
	return true
}

func setInt(store driven.ConfigStore, key string, dst *int) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetInt(key)
	}
}

func setBool(store driven.ConfigStore, key string, dst *bool) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetBool(key)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}

// ParseValue converts a command-line value into the type stored for key.
// Unknown keys fail with domain.ErrInvalidInput.
func ParseValue(key, raw string) (any, error) {
	switch key {
	case KeyOwner, KeyLogLevel, KeyEmbeddingProvider, KeyEmbeddingModel, KeyEmbeddingBaseURL,
		KeyEmbeddingAPIKey, KeyEmbeddingAccountID, KeyStoreKind, KeyStoreDataDir,
		KeyStoreDatabaseURL, KeyServerAddr:
		return raw, nil
	case KeyServerShutdown:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		return raw, nil
	case KeyEmbeddingDimensions, KeyEmbeddingRetries, KeyChunkSize, KeyChunkOverlap,
		KeyIngestBatchSize, KeyIngestWorkers:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case KeyEmbeddingRPS:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case KeyLogPretty, KeyIngestFallback:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
}

// IsSecret reports whether the value stored under key should be masked on display.
func IsSecret(key string) bool {
	return key == KeyEmbeddingAPIKey || key == KeyStoreDatabaseURL
}

// Mask hides all but the ends of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// Display formats a stored value for output, masking secrets.
func Display(key string, value any) string {
	s := fmt.Sprint(value)
	if IsSecret(key) && s != "" {
		return Mask(s)
	}
	return s
}
