package httpapi

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

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

type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastReq domain.IngestRequest
	calls   int
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.calls++
	m.lastReq = req
	return m.result, m.err
}

type mockSessionService struct {
	err     error
	lastReq domain.SessionRequest
}

func (m *mockSessionService) Save(_ context.Context, req domain.SessionRequest) error {
	m.lastReq = req
	return m.err
}
