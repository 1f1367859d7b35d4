package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/recall/internal/adapters/driving/watch"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// mockIngestService records requests and returns a canned result.
type mockIngestService struct {
	IngestFunc func(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
	requests   []domain.IngestRequest
}

func (m *mockIngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	return &domain.IngestResult{
		Success:                true,
		ConversationsProcessed: len(req.Files),
		ChunksCreated:          len(req.Files) * 2,
	}, nil
}

// mockRetrievalService returns canned results.
type mockRetrievalService struct {
	RetrieveForMessageFunc func(ctx context.Context, req domain.RetrieveRequest, now time.Time) (*domain.RetrievalResult, error)
	requests               []domain.RetrieveRequest
}

func (m *mockRetrievalService) Retrieve(
	ctx context.Context, query, ownerID string, _ *domain.TemporalRange,
) (*domain.RetrievalResult, error) {
	return m.RetrieveForMessage(ctx, domain.RetrieveRequest{Query: query, OwnerID: ownerID}, time.Now())
}

func (m *mockRetrievalService) RetrieveForMessage(
	ctx context.Context, req domain.RetrieveRequest, now time.Time,
) (*domain.RetrievalResult, error) {
	m.requests = append(m.requests, req)
	if m.RetrieveForMessageFunc != nil {
		return m.RetrieveForMessageFunc(ctx, req, now)
	}
	return &domain.RetrievalResult{}, nil
}

// mockSessionService accepts every session.
type mockSessionService struct{}

func (m *mockSessionService) Save(_ context.Context, _ domain.SessionRequest) error {
	return nil
}

// mockInsightService returns fixed analyses.
type mockInsightService struct {
	mood *domain.MoodAnalysis
	rng  *domain.TemporalRange
}

func (m *mockInsightService) AnalyzeMood(_ string) *domain.MoodAnalysis {
	return m.mood
}

func (m *mockInsightService) ParseTemporal(_ string, _ time.Time) *domain.TemporalRange {
	return m.rng
}

// mockSettingsService keeps raw values in memory.
type mockSettingsService struct {
	values      map[string]string
	validateErr error
	pingErr     error
	provider    domain.AIProvider
	model       string
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	if m.provider != "" {
		s.Embedding.Provider = m.provider
	}
	return &s, nil
}

func (m *mockSettingsService) Entries() []driving.SettingEntry {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]driving.SettingEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, driving.SettingEntry{Key: k, Value: m.values[k]})
	}
	return entries
}

func (m *mockSettingsService) Set(key, raw string) error {
	if key == "bogus" {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	m.values[key] = raw
	return nil
}

func (m *mockSettingsService) Unset(key string) error {
	if key == "bogus" {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	delete(m.values, key)
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	return m.pingErr
}

func (m *mockSettingsService) Path() string {
	return "/tmp/recall/config.toml"
}

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	insight   *mockInsightService
	settings  *mockSettingsService
}

var testMocks *testServices

// setupTestServices installs mock services and returns a function that
// restores the previous package state.
func setupTestServices() func() {
	prevIngest := ingestService
	prevRetrieval := retrievalService
	prevSession := sessionService
	prevInsight := insightService
	prevSettings := settingsService
	prevOwner := defaultOwner
	prevInit := initializer

	testMocks = &testServices{
		ingest:    &mockIngestService{},
		retrieval: &mockRetrievalService{},
		insight:   &mockInsightService{},
		settings:  newMockSettingsService(),
	}
	ingestService = testMocks.ingest
	retrievalService = testMocks.retrieval
	sessionService = &mockSessionService{}
	insightService = testMocks.insight
	settingsService = testMocks.settings
	defaultOwner = "alice"
	initializer = nil

	return func() {
		ingestService = prevIngest
		retrievalService = prevRetrieval
		sessionService = prevSession
		insightService = prevInsight
		settingsService = prevSettings
		defaultOwner = prevOwner
		initializer = prevInit
		resetFlags()
	}
}

// resetFlags restores flag variables; cobra keeps parsed values between runs.
func resetFlags() {
	globalOpts = Options{}
	ingestJSON = false
	searchJSON = false
	searchMessage = ""
	moodJSON = false
	whenJSON = false
	splitMaxMB = 3
	splitOut = ""
	serveAddr = ""
	watchDebounce = watch.DefaultDebounce
	rootCmd.SetIn(nil)
}
