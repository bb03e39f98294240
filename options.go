package colbertdb

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL string
	apiKey  string
	store   string
	timeout time.Duration

	httpClient  *http.Client
	lazyConnect bool

	rateLimit float64
	rateBurst int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the colbertDB server URL, e.g. "http://localhost:8080". Required.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithAPIKey sets the API key sent on connect.
// Without a key the server must allow anonymous access.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithStore selects the store (namespace) on the server.
// Defaults to "default".
func WithStore(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = name
	})
}

// WithTimeout sets the per-request timeout. Defaults to 60s.
// Ignored when WithHTTPClient is used; configure that client instead.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient sets a custom HTTP client (transport, proxies, tracing).
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLazyConnect defers the connect round trip to the first operation.
func WithLazyConnect() Option {
	return optionFunc(func(c *clientConfig) {
		c.lazyConnect = true
	})
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// Requests wait for a slot; nothing is retried.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = rps
		c.rateBurst = burst
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
