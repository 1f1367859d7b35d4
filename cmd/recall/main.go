// Command recall imports AI chat exports into a vector store and retrieves
// past conversations by meaning and by Italian time references.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/recall/internal/adapters/driven/ai"
	"github.com/custodia-labs/recall/internal/adapters/driven/config/file"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/recall/internal/adapters/driving/cli"
	"github.com/custodia-labs/recall/internal/config"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/services"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/metrics"
	"github.com/custodia-labs/recall/internal/parsers"
	"github.com/custodia-labs/recall/internal/postprocessors"
)

func main() {
	cli.SetInitializer(initialize)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initialize loads settings and wires the services a command needs.
// Commands that do not touch the store skip the embedder and the store.
func initialize(ctx context.Context, opts cli.Options) (func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	settings, err := config.Load(configStore)
	if err != nil {
		logger.Warn("invalid configuration, using defaults: %v", err)
		settings = domain.DefaultSettings()
	}
	logger.Configure(logger.Config{Level: settings.LogLevel, Pretty: settings.LogPretty})
	logger.SetVerbose(opts.Verbose)

	cli.SetSettingsService(services.NewSettingsService(configStore, ai.NewConfigValidator()))
	cli.SetInsightService(services.NewInsightService())
	cli.SetDefaultOwner(settings.Owner)
	cli.SetServerSettings(settings.Server)
	cli.SetGatherer(prometheus.DefaultGatherer)

	if !opts.Backend {
		return func() {}, nil
	}
	return wireBackend(ctx, &settings)
}

// newEmbedder returns nil only when no provider can be built from the
// settings. A provider that fails the startup ping is kept; later requests
// report its outages as domain.EmbeddingError.
func newEmbedder(ctx context.Context, s *domain.EmbeddingSettings, m *metrics.Metrics) driven.EmbeddingService {
	embedder, err := ai.CreateEmbeddingService(ctx, s, m)
	if err != nil {
		logger.Debug("embedding service unavailable: %v", err)
		return nil
	}
	if err := ai.PingEmbeddingService(ctx, embedder); err != nil {
		logger.Warn("embedding provider %s unreachable at startup: %v", s.Provider, err)
	}
	return embedder
}

// wireBackend builds the embedder, the vector store and the services on top
// of them. A missing embedder is not fatal: retrieval then reports
// domain.ErrEmbeddingUnavailable per request.
func wireBackend(ctx context.Context, s *domain.Settings) (func(), error) {
	m := metrics.Default()

	logger.Section("Backend")
	embedder := newEmbedder(ctx, &s.Embedding, m)

	store, err := openStore(ctx, s.Store)
	if err != nil {
		if embedder != nil {
			embedder.Close()
		}
		return nil, err
	}
	logger.Debug("vector store: %s", s.Store.Kind)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(postprocessors.DefaultPipeline, map[string]map[string]any{
		"chunker": postprocessors.ChunkerConfig(s.Chunker),
	})
	if err != nil {
		store.Close()
		if embedder != nil {
			embedder.Close()
		}
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	ingest := services.NewIngestService(parsers.NewDefaultRegistry(), pipeline, embedder, store, s.Ingest)
	ingest.SetMetrics(m)
	retrieval := services.NewRetrievalService(embedder, store)
	retrieval.SetMetrics(m)

	cli.SetIngestService(ingest)
	cli.SetRetrievalService(retrieval)
	cli.SetSessionService(services.NewSessionService(embedder, store))

	return func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		if embedder != nil {
			embedder.Close()
		}
	}, nil
}

// openStore opens the vector store selected by s.
func openStore(ctx context.Context, s domain.StoreSettings) (driven.VectorStore, error) {
	switch s.Kind {
	case domain.StoreSQLite:
		return sqlite.NewStore(s.DataDir)
	case domain.StorePostgres:
		return postgres.NewStore(ctx, s.DatabaseURL)
	case domain.StoreMemory:
		return memory.NewVectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store kind %q", errUnknownStore, s.Kind)
	}
}

var errUnknownStore = errors.New("unsupported vector store")
