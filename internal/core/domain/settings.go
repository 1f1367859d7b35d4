package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderCloudflare is Cloudflare Workers AI.
	AIProviderCloudflare AIProvider = "cloudflare"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderCloudflare, AIProviderOpenAI, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderCloudflare || p == AIProviderOpenAI || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderCloudflare:
		return "Cloudflare Workers AI (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// AllAIProviders lists the supported embedding providers in display order.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderCloudflare, AIProviderOpenAI, AIProviderGemini, AIProviderOllama}
}

// StoreKind selects the vector store backend.
type StoreKind string

// Available vector stores.
const (
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

// IsValid returns true if the store kind is recognised.
func (k StoreKind) IsValid() bool {
	switch k {
	case StoreSQLite, StorePostgres, StoreMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider" validate:"omitempty,oneof=cloudflare openai gemini ollama"`

	// Model is the embedding model name. Empty means the provider default.
	Model string `toml:"model"`

	// BaseURL overrides the API endpoint.
	BaseURL string `toml:"base_url" validate:"omitempty,url"`

	// APIKey is the API key or bearer token.
	APIKey string `toml:"api_key"`

	// AccountID is the Cloudflare account identifier.
	AccountID string `toml:"account_id"`

	// Dimensions overrides the model's output dimension where supported.
	Dimensions int `toml:"dimensions" validate:"gte=0"`

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`

	// MaxRetries is the number of retries for transient failures.
	MaxRetries int `toml:"max_retries" validate:"gte=0,lte=10"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider == AIProviderCloudflare && e.AccountID == "" {
		return false
	}
	return true
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	Kind StoreKind `toml:"kind" validate:"required,oneof=sqlite postgres memory"`

	// DataDir is where the SQLite database lives.
	DataDir string `toml:"data_dir"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `toml:"database_url" validate:"required_if=Kind postgres"`
}

// ChunkerSettings configures transcript chunking.
type ChunkerSettings struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"`
	Overlap   int `toml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// IngestSettings configures the ingestion pipeline.
type IngestSettings struct {
	// BatchSize is the number of chunks embedded per provider call.
	BatchSize int `toml:"batch_size" validate:"gt=0,lte=1000"`

	// Workers bounds concurrent file parsing.
	Workers int `toml:"workers" validate:"gt=0,lte=64"`

	// FallbackPlaintext ingests unparseable files as plain documents.
	FallbackPlaintext bool `toml:"fallback_plaintext"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string        `toml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Settings is the complete runtime configuration.
type Settings struct {
	// Owner is the default owner identifier for CLI operations.
	Owner string `toml:"owner" validate:"required"`

	LogLevel  string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogPretty bool   `toml:"log_pretty"`

	Embedding EmbeddingSettings `toml:"embedding"`
	Store     StoreSettings     `toml:"store"`
	Chunker   ChunkerSettings   `toml:"chunker"`
	Ingest    IngestSettings    `toml:"ingest"`
	Server    ServerSettings    `toml:"server"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Owner:     "local",
		LogLevel:  "warn",
		LogPretty: true,
		Embedding: EmbeddingSettings{
			Provider:          AIProviderCloudflare,
			RequestsPerSecond: 5,
			MaxRetries:        3,
		},
		Store: StoreSettings{
			Kind: StoreSQLite,
		},
		Chunker: ChunkerSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Ingest: IngestSettings{
			BatchSize:         100,
			Workers:           4,
			FallbackPlaintext: true,
		},
		Server: ServerSettings{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
