package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeboard/knowledge-server/internal/cache"
	"github.com/knowledgeboard/knowledge-server/internal/category"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
	"github.com/knowledgeboard/knowledge-server/internal/store"
	"github.com/knowledgeboard/knowledge-server/internal/validation"
)

// testEnvelope mirrors APIEnvelope with typed data.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api    humatest.TestAPI
	sheets *sheet.Memory
	store  *store.Store
}

func setupTestServer(t *testing.T, opts Options, checks ...HealthCheck) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	mem := sheet.NewMemory()
	st, err := store.New(ctx, mem, log)
	require.NoError(t, err)

	registry, err := category.NewRegistry(nil)
	require.NoError(t, err)

	knowledge := service.NewKnowledgeService(st, service.NewListCache(cache.NewMemory(), 0, log), registry, validation.New(), log)

	s := NewServer(knowledge, checks, opts, log)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		sheets: mem,
		store:  st,
	}
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope), string(body))
	return envelope
}

func (ts *testServer) addPost(t *testing.T, body map[string]any) int64 {
	t.Helper()
	resp := ts.api.Post("/api/v1/knowledge", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[service.MutationResult](t, resp.Body.Bytes())
	require.True(t, envelope.Data.Success, envelope.Data.Error)
	return envelope.Data.ID
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{},
		HealthCheck{Name: "store", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "cache", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.Equal(t, "unhealthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["store"].Status)
	assert.Equal(t, "unhealthy", envelope.Data.Components["cache"].Status)
	assert.Equal(t, "connection refused", envelope.Data.Components["cache"].Message)
}

func TestHealth_AllHealthy(t *testing.T) {
	ts := setupTestServer(t, Options{},
		HealthCheck{Name: "store", Check: func(context.Context) error { return nil }},
	)

	resp := ts.api.Get("/health")
	envelope := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", envelope.Data.Status)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestWriteRateLimit(t *testing.T) {
	ts := setupTestServer(t, Options{WritesPerMinute: 2})
	id := ts.addPost(t, map[string]any{"title": "limited"})

	resp := ts.api.Post("/api/v1/knowledge/1/likes", map[string]any{"clientId": "c1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/knowledge/1/likes", map[string]any{"clientId": "c2"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	// Reads are never limited.
	resp = ts.api.Get("/api/v1/knowledge")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(1), id)
}

func TestWriteRateLimit_IgnoresForwardedHeaders(t *testing.T) {
	ts := setupTestServer(t, Options{WritesPerMinute: 2})
	ts.addPost(t, map[string]any{"title": "limited"})

	resp := ts.api.Post("/api/v1/knowledge/1/likes", "X-Forwarded-For: 203.0.113.1", map[string]any{"clientId": "c1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/knowledge/1/likes", "X-Forwarded-For: 203.0.113.2", map[string]any{"clientId": "c2"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code, "rotating X-Forwarded-For must not reset the budget")
}

func TestWriteRateLimit_TrustedProxyKeysOnForwardedFor(t *testing.T) {
	ts := setupTestServer(t, Options{WritesPerMinute: 1, TrustProxy: true})

	resp := ts.api.Post("/api/v1/knowledge", "X-Forwarded-For: 203.0.113.1", map[string]any{"title": "a"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/knowledge", "X-Forwarded-For: 203.0.113.2", map[string]any{"title": "b"})
	assert.Equal(t, http.StatusOK, resp.Code, "a second client behind the proxy has its own budget")

	resp = ts.api.Post("/api/v1/knowledge", "X-Forwarded-For: 203.0.113.1", map[string]any{"title": "c"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", nil, "10.0.0.1"},
		{"forwarded for is ignored", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1"},
		{"real ip is ignored", "10.0.0.1:5555", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1"},
		{"ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"no port", "10.0.0.1", nil, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
