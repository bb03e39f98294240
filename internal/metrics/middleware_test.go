package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Post("/api/v1/collections/{collection}/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest("POST", "/api/v1/collections/notes/search", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(
		"POST", "/api/v1/collections/{collection}/search", "200"))
	if val != 1 {
		t.Errorf("requests_total = %f, want 1", val)
	}
	if testutil.CollectAndCount(m.httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_DifferentStatusCodes(t *testing.T) {
	m := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/notfound", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/conflict", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/ok", "200"},
		{"/notfound", "404"},
		{"/conflict", "409"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val != 1 {
				t.Errorf("requests_total{%s,%s} = %f, want 1", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("expected error on second registration")
	}
}

func TestNilMetrics_NoOp(t *testing.T) {
	var m *Metrics
	m.DocumentsIndexed(3)
	m.SearchServed(1)

	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Code != http.StatusTeapot {
		t.Errorf("got %d", rr.Code)
	}
}

func TestEngineCounters(t *testing.T) {
	m := newTestMetrics(t)
	m.DocumentsIndexed(2)
	m.DocumentsIndexed(3)
	m.SearchServed(4)

	if got := testutil.ToFloat64(m.documentsIndexed); got != 5 {
		t.Errorf("documents_indexed_total = %f, want 5", got)
	}
	if testutil.CollectAndCount(m.searchHits) != 1 {
		t.Error("expected search_hits to be collected")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/api/v1/collections/", "/api/v1/collections/"},
		{"/health", "/health"},
	}
	for _, tc := range tests {
		if result := normalizePath(tc.input); result != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
