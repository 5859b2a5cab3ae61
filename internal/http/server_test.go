package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/cache"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/services"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	m := metrics.New()
	svc := services.NewPortfolioService(repo, services.PortfolioServiceOptions{
		Cache:   cache.NewLRUCache[[]timeseries.SummaryCard](32, time.Minute),
		Metrics: m,
	})
	srv := NewServer(":0", Options{
		Repo:               repo,
		Portfolio:          svc,
		Metrics:            m,
		DefaultInterval:    0,
		RateLimitPerMinute: rateLimit,
	})
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t, 1000)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(t, srv, http.MethodGet, "/api/hello", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello from the server!", decode[messageResponse](t, rec).Message)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cryptofolio_http_requests_total{code="200",method="GET",route="/api/hello"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, 1000)
	rec := do(t, srv, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decode[ErrorResponse](t, rec).Error)
}

func TestUsers(t *testing.T) {
	srv := newTestServer(t, 1000)

	rec := do(t, srv, http.MethodPost, "/api/createUser", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "ignored",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[userJSON](t, rec)
	assert.Equal(t, "alice", user.Username)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
	}{
		{name: "get by id", method: http.MethodGet, target: "/api/getUserById?id=1", status: http.StatusOK},
		{name: "get missing", method: http.MethodGet, target: "/api/getUserById?id=99", status: http.StatusNotFound},
		{name: "get bad id", method: http.MethodGet, target: "/api/getUserById?id=abc", status: http.StatusBadRequest},
		{name: "get by email", method: http.MethodGet, target: "/api/getUserByEmail?email=alice@example.com", status: http.StatusOK},
		{name: "create invalid email", method: http.MethodPost, target: "/api/createUser", body: map[string]string{"username": "bob", "email": "nope"}, status: http.StatusBadRequest},
		{name: "update nothing", method: http.MethodPut, target: "/api/updateUser", body: map[string]any{"id": 1, "updates": map[string]any{}}, status: http.StatusBadRequest},
		{name: "update via post", method: http.MethodPost, target: "/api/updateUser", body: map[string]any{"id": 1, "updates": map[string]any{"username": "alice2"}}, status: http.StatusOK},
		{name: "delete missing", method: http.MethodDelete, target: "/api/deleteUser", body: map[string]any{"id": 42}, status: http.StatusNotFound},
		{name: "delete empty body", method: http.MethodDelete, target: "/api/deleteUser", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status >= 400 {
				assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestPortfoliosGetOrCreate(t *testing.T) {
	srv := newTestServer(t, 1000)
	rec := do(t, srv, http.MethodPost, "/api/createUser", map[string]string{"username": "alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/getPortfoliosByUserId?userId=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ps := decode[[]portfolioJSON](t, rec)
	require.Len(t, ps, 1)
	assert.Equal(t, "Portfolio 1", ps[0].Name)

	rec = do(t, srv, http.MethodGet, "/api/getPortfoliosByUserId?userId=1", nil)
	assert.Len(t, decode[[]portfolioJSON](t, rec), 1)

	rec = do(t, srv, http.MethodPut, "/api/updatePortfolioName", map[string]any{"id": ps[0].ID, "name": "Long term"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Long term", decode[portfolioJSON](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/api/getPortfoliosByUserId?userId=7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, 2)
	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, do(t, srv, http.MethodGet, "/api/hello", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "ops endpoints are not limited")

	rec = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.True(t, strings.Contains(rec.Body.String(), "cryptofolio_http_rate_limited_total 1"))
}
