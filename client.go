package colbertdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	domcol "github.com/kailas-cloud/colbertdb-go/internal/domain/collection"
	domdoc "github.com/kailas-cloud/colbertdb-go/internal/domain/document"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/request"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/result"
	"github.com/kailas-cloud/colbertdb-go/internal/transport/rest"
)

const (
	// DefaultTimeout is the per-request timeout when WithTimeout is not set.
	DefaultTimeout = 60 * time.Second
	// DefaultStore is the store used when WithStore is not set.
	DefaultStore = "default"
)

// apiClient is the HTTP protocol layer, replaced by a mock in tests.
type apiClient interface {
	Connect(ctx context.Context) error
	CreateCollection(ctx context.Context, name string, docs []domdoc.Document, opts domcol.Options) (string, error)
	GetCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]string, error)
	DeleteCollection(ctx context.Context, name string) error
	AddDocuments(ctx context.Context, name string, docs []domdoc.Document) error
	DeleteDocuments(ctx context.Context, name string, ids []string) error
	Search(ctx context.Context, name string, req *request.Request) ([]result.Result, error)
	CloseIdleConnections()
}

// Client is the colbertDB entry point. Safe for concurrent use.
// Collection handles returned by it are valid until Close.
type Client struct {
	api   apiClient
	obs   *observer
	store string

	mu     sync.RWMutex
	closed bool
}

// New creates a Client and connects to the server unless WithLazyConnect is given.
// The provided context bounds the initial connect.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		store:   DefaultStore,
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if err := validateBaseURL(cfg.baseURL); err != nil {
		return nil, err
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	var limiter *rate.Limiter
	if cfg.rateLimit > 0 {
		burst := max(cfg.rateBurst, 1)
		limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	api := rest.New(rest.Config{
		BaseURL:    cfg.baseURL,
		APIKey:     cfg.apiKey,
		Store:      cfg.store,
		HTTPClient: hc,
		Limiter:    limiter,
	})
	c := newClient(api, obs, cfg.store)

	if !cfg.lazyConnect {
		if err := c.Connect(ctx); err != nil {
			api.CloseIdleConnections()
			return nil, fmt.Errorf("colbertdb: %w", err)
		}
	}
	return c, nil
}

func newClient(api apiClient, obs *observer, store string) *Client {
	return &Client{api: api, obs: obs, store: store}
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: colbertdb: base URL required (use WithBaseURL)", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: colbertdb: invalid base URL: %w", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: colbertdb: base URL scheme must be http or https, got %q", ErrValidation, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: colbertdb: base URL has no host", ErrValidation)
	}
	return nil
}

// Store returns the store (namespace) this client is bound to.
func (c *Client) Store() string { return c.store }

// Connect exchanges the API key for an access token.
// Rejected credentials and an unreachable server both fail with ErrConnection.
func (c *Client) Connect(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("connect", "", start, err) }()

	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := c.api.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Ping checks reachability and credentials with a fresh connect round trip.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := c.api.Connect(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// CreateCollection creates a collection from a non-empty set of documents.
// An existing name fails with ErrConflict unless ForceCreate is given,
// in which case the old collection is replaced.
func (c *Client) CreateCollection(
	ctx context.Context, name string, docs []Document, opts ...CollectionOption,
) (col *Collection, err error) {
	start := time.Now()
	defer func() { c.obs.observe("collection.create", name, start, err) }()

	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := domcol.ValidateName(name); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	domDocs, err := toDomainDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	var o domcol.Options
	for _, opt := range opts {
		opt.applyCollection(&o)
	}

	created, err := c.api.CreateCollection(ctx, name, domDocs, o)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	return &Collection{name: created, client: c}, nil
}

// GetCollection returns a handle to an existing collection.
// An unknown name fails with ErrNotFound.
func (c *Client) GetCollection(ctx context.Context, name string) (col *Collection, err error) {
	start := time.Now()
	defer func() { c.obs.observe("collection.get", name, start, err) }()

	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := domcol.ValidateName(name); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if err := c.api.GetCollection(ctx, name); err != nil {
		return nil, fmt.Errorf("get collection %q: %w", name, err)
	}
	return &Collection{name: name, client: c}, nil
}

// ListCollections returns the names of all collections in the store.
func (c *Client) ListCollections(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("collection.list", "", start, err) }()

	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	names, err = c.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// DeleteCollection removes a collection. Deleting an absent collection
// fails with ErrNotFound; it is not treated as success.
func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("collection.delete", name, start, err) }()

	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := domcol.ValidateName(name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if err := c.api.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}

// Close releases pooled connections. Subsequent calls fail with ErrClientClosed.
// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.api.CloseIdleConnections()
	return nil
}

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// toDomainDocuments validates a document batch at the client boundary.
func toDomainDocuments(docs []Document) ([]domdoc.Document, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	out := make([]domdoc.Document, len(docs))
	for i := range docs {
		d, err := domdoc.New(docs[i].Content, docs[i].Metadata)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func fromDomainResults(results []result.Result) []SearchHit {
	out := make([]SearchHit, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchHit{
			ID:       r.ID(),
			Content:  r.Content(),
			Metadata: r.Metadata(),
			Score:    r.Score(),
		}
	}
	return out
}
