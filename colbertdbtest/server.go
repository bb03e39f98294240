// Package colbertdbtest runs an in-process colbertDB server for tests.
//
//	srv := colbertdbtest.NewServer(t, colbertdbtest.WithAPIKey("secret"))
//	client, err := colbertdb.New(ctx,
//	    colbertdb.WithBaseURL(srv.URL),
//	    colbertdb.WithAPIKey("secret"),
//	)
//
// Ranking is full-text relevance over document content, which is enough
// to exercise client behavior but is not ColBERT late interaction.
package colbertdbtest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/kailas-cloud/colbertdb-go/internal/engine"
	"github.com/kailas-cloud/colbertdb-go/internal/metrics"
	chiTransport "github.com/kailas-cloud/colbertdb-go/internal/transport/chi"
)

// Option configures the test server.
type Option func(*config)

type config struct {
	api     chiTransport.Config
	verbose bool
}

// WithAPIKey requires clients to connect with one of the given keys.
func WithAPIKey(keys ...string) Option {
	return func(c *config) { c.api.APIKeys = append(c.api.APIKeys, keys...) }
}

// WithStores restricts the stores clients may connect to.
func WithStores(stores ...string) Option {
	return func(c *config) { c.api.Stores = append(c.api.Stores, stores...) }
}

// WithRateLimit makes the server answer 429 above rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.api.RateLimit = rps
		c.api.RateBurst = burst
	}
}

// WithLogging routes server logs to the test log.
func WithLogging() Option {
	return func(c *config) { c.verbose = true }
}

// Server is a running fake colbertDB server.
type Server struct {
	// URL is the base URL to pass to colbertdb.WithBaseURL.
	URL string
	// Registry holds the server metrics, also served on /metrics.
	Registry *prometheus.Registry

	srv    *httptest.Server
	engine *engine.Engine
}

// NewServer starts a server that is shut down when the test ends.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	logger := zap.NewNop()
	if cfg.verbose {
		logger = zaptest.NewLogger(tb)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		tb.Fatalf("colbertdbtest: metrics: %v", err)
	}
	cfg.api.Metrics = m

	eng := engine.New()
	api, err := chiTransport.NewServer(eng, cfg.api, logger)
	if err != nil {
		tb.Fatalf("colbertdbtest: server: %v", err)
	}

	r := chi.NewRouter()
	api.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s := &Server{
		Registry: reg,
		srv:      httptest.NewServer(r),
		engine:   eng,
	}
	s.URL = s.srv.URL
	tb.Cleanup(s.Close)
	return s
}

// Client returns an HTTP client bound to the server.
func (s *Server) Client() *http.Client { return s.srv.Client() }

// Collections lists collection names in a store, bypassing the HTTP API.
func (s *Server) Collections(store string) []string { return s.engine.List(store) }

// Close shuts the server down. Safe to call more than once.
func (s *Server) Close() {
	s.srv.Close()
	_ = s.engine.Close()
}
