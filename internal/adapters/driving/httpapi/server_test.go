package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/metrics"
)

var fixedNow = time.Date(2025, 10, 14, 15, 30, 0, 0, time.UTC)

type testEnv struct {
	retrieval *mockRetrievalService
	ingest    *mockIngestService
	session   *mockSessionService
	registry  *prometheus.Registry
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		retrieval: &mockRetrievalService{result: &domain.RetrievalResult{Content: []domain.SearchResult{}}},
		ingest:    &mockIngestService{result: &domain.IngestResult{Success: true}},
		session:   &mockSessionService{},
		registry:  prometheus.NewRegistry(),
	}
	server, err := NewServer(&Ports{
		Retrieval: env.retrieval,
		Ingest:    env.ingest,
		Session:   env.session,
		Gatherer:  env.registry,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	env.handler = server.Handler()
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresRetrieval(t *testing.T) {
	server, err := NewServer(&Ports{})
	assert.Nil(t, server)
	assert.ErrorIs(t, err, ErrMissingRetrievalService)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	m := metrics.New(env.registry)
	m.RetrievalTotal.WithLabelValues(metrics.PathRanged).Inc()

	rec := env.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recall_retrieval_total{path="ranged"} 1`)
}

func TestRetrieve(t *testing.T) {
	t.Run("returns results", func(t *testing.T) {
		env := newTestEnv(t)
		env.retrieval.result = &domain.RetrievalResult{
			Content: []domain.SearchResult{{ID: "c-0", Content: "pizza", Similarity: 0.9, Source: domain.SourceClaude}},
		}

		rec := env.do(http.MethodPost, "/v1/retrieve", `{"query":"pizza","ownerId":"u1","message":"ieri?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.RetrievalResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Content, 1)
		assert.Equal(t, "c-0", got.Content[0].ID)
		assert.Equal(t, domain.RetrieveRequest{Query: "pizza", OwnerID: "u1", Message: "ieri?"}, env.retrieval.lastReq)
		assert.Equal(t, fixedNow, env.retrieval.lastNow)
	})

	t.Run("missing owner is a bad request", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/v1/retrieve", `{"query":"pizza"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "OwnerID")
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/v1/retrieve", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid JSON body")
	})

	t.Run("wrong method", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/v1/retrieve", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("service errors map to status", func(t *testing.T) {
		env := newTestEnv(t)
		env.retrieval.err = domain.NewStoreError("search", errors.New("down"))

		rec := env.do(http.MethodPost, "/v1/retrieve", `{"query":"x","ownerId":"u1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})
}

func TestIngest(t *testing.T) {
	body := `{"ownerId":"u1","files":[{"filename":"conversations.json","content":"[]"}]}`

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.ingest.result = &domain.IngestResult{Success: true, ConversationsProcessed: 2, ChunksCreated: 7}

		rec := env.do(http.MethodPost, "/v1/ingest", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"conversationsProcessed":2,"chunksCreated":7}`, rec.Body.String())
		assert.Equal(t, "u1", env.ingest.lastReq.OwnerID)
		assert.Equal(t, "conversations.json", env.ingest.lastReq.Files[0].Filename)
	})

	t.Run("pipeline failure returns result with 500", func(t *testing.T) {
		env := newTestEnv(t)
		env.ingest.result = &domain.IngestResult{Success: false, ChunksCreated: 100, Error: "embeddings failed"}

		rec := env.do(http.MethodPost, "/v1/ingest", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"chunksCreated":100`)
		assert.Contains(t, rec.Body.String(), `"error":"embeddings failed"`)
	})

	t.Run("no files is rejected before the service", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/v1/ingest", `{"ownerId":"u1","files":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, env.ingest.calls)
	})
}

func TestSessions(t *testing.T) {
	t.Run("saves with given id", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/v1/sessions",
			`{"ownerId":"u1","sessionId":"s-1","messages":[{"role":"user","content":"ciao"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"sessionId":"s-1"}`, rec.Body.String())
		assert.Equal(t, "s-1", env.session.lastReq.SessionID)
		assert.Len(t, env.session.lastReq.Messages, 1)
	})

	t.Run("generates a session id", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/v1/sessions", `{"ownerId":"u1","messages":[]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, env.session.lastReq.SessionID, 36)
	})

	t.Run("embedding unavailable", func(t *testing.T) {
		env := newTestEnv(t)
		env.session.err = domain.ErrEmbeddingUnavailable

		rec := env.do(http.MethodPost, "/v1/sessions", `{"ownerId":"u1","sessionId":"s"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestOptionalRoutesAbsent(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	for _, path := range []string{"/v1/ingest", "/v1/sessions"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{domain.NewStoreError("upsert", errors.New("x")), http.StatusServiceUnavailable},
		{domain.NewEmbeddingError("cloudflare", errors.New("x")), http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
