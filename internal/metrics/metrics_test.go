package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/cache"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/things/7", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `cryptofolio_http_requests_total{code="418",method="GET",route="/api/things/{id}"} 1`)
	assert.Contains(t, body, "cryptofolio_http_request_duration_seconds")
}

func TestCountersAndCache(t *testing.T) {
	m := New()
	m.HistoryEvent(EventRecorded)
	m.HistoryEvent(EventRecorded)
	m.HistoryEvent(EventSyncError)
	m.SummaryServed(true)
	m.SummaryServed(false)
	m.RateLimited()

	c := cache.NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")
	m.RegisterCache("summary", c.Stats)

	body := scrape(t, m)
	assert.Contains(t, body, `cryptofolio_history_events_total{event="recorded"} 2`)
	assert.Contains(t, body, `cryptofolio_history_events_total{event="sync_error"} 1`)
	assert.Contains(t, body, `cryptofolio_views_summaries_total{source="cache"} 1`)
	assert.Contains(t, body, "cryptofolio_http_rate_limited_total 1")
	assert.Contains(t, body, `cryptofolio_cache_hits_total{cache="summary"} 1`)
	assert.Contains(t, body, `cryptofolio_cache_misses_total{cache="summary"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.HistoryEvent(EventSynced)
	m.SummaryServed(true)
	m.RateLimited()
	m.RegisterCache("x", nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := m.Middleware(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
