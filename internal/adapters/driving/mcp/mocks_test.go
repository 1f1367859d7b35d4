package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result  *domain.RetrievalResult
	err     error
	lastReq domain.RetrieveRequest
	lastNow time.Time
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, _, _ string, _ *domain.TemporalRange,
) (*domain.RetrievalResult, error) {
	return m.result, m.err
}

func (m *mockRetrievalService) RetrieveForMessage(
	_ context.Context, req domain.RetrieveRequest, now time.Time,
) (*domain.RetrievalResult, error) {
	m.lastReq = req
	m.lastNow = now
	return m.result, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastReq domain.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	err     error
	lastReq domain.SessionRequest
}

func (m *mockSessionService) Save(_ context.Context, req domain.SessionRequest) error {
	m.lastReq = req
	return m.err
}

// mockInsightService is a mock implementation of driving.InsightService.
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
