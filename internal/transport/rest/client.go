// Package rest implements the colbertDB JSON-over-HTTP protocol.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
	domcol "github.com/kailas-cloud/colbertdb-go/internal/domain/collection"
	domdoc "github.com/kailas-cloud/colbertdb-go/internal/domain/document"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/request"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/result"
	"github.com/kailas-cloud/colbertdb-go/internal/version"
)

const (
	connectPath     = "/api/v1/client/connect/"
	collectionsPath = "/api/v1/collections"

	apiKeyHeader = "x-api-key"

	// maxErrorMessage bounds raw response text copied into error messages.
	maxErrorMessage = 512
	// maxResponseBody bounds how much of a response body is buffered.
	maxResponseBody = 64 << 20
)

// Config holds the API client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Store      string
	HTTPClient *http.Client
	Limiter    *rate.Limiter // nil = unthrottled
}

// Client speaks the colbertDB HTTP API. Safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	store     string
	limiter   *rate.Limiter
	userAgent string
	maxBody   int

	mu    sync.RWMutex
	token string
}

// New creates an API client. BaseURL must be validated by the caller.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		http:      hc,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		store:     cfg.Store,
		limiter:   cfg.Limiter,
		userAgent: "colbertdb-go/" + version.Version,
		maxBody:   maxResponseBody,
	}
}

// Connect exchanges the API key for an access token.
func (c *Client) Connect(ctx context.Context) error {
	var resp connectResponse
	path := connectPath + url.PathEscape(c.store)
	if err := c.do(ctx, http.MethodPost, path, false, nil, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("%w: connect response has no access token", domain.ErrService)
	}
	c.mu.Lock()
	c.token = resp.AccessToken
	c.mu.Unlock()
	return nil
}

// Connected reports whether an access token is held.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// CreateCollection creates a collection and returns the name the service reports.
func (c *Client) CreateCollection(
	ctx context.Context, name string, docs []domdoc.Document, opts domcol.Options,
) (string, error) {
	body := createCollectionRequest{
		Name:      name,
		Documents: toDocumentDTOs(docs),
		Options:   collectionOptionsDTO{ForceCreate: opts.ForceCreate},
	}
	var resp collectionResponse
	if err := c.do(ctx, http.MethodPost, collectionsPath+"/", true, body, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return name, nil
	}
	return resp.Name, nil
}

// GetCollection checks that a collection exists.
func (c *Client) GetCollection(ctx context.Context, name string) error {
	var resp collectionResponse
	if err := c.do(ctx, http.MethodGet, collectionPath(name), true, nil, &resp); err != nil {
		return err
	}
	if resp.Exists != nil && !*resp.Exists {
		return fmt.Errorf("%w: collection %q does not exist", domain.ErrNotFound, name)
	}
	return nil
}

// ListCollections returns the names of all collections in the store.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var resp listCollectionsResponse
	if err := c.do(ctx, http.MethodGet, collectionsPath+"/", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// DeleteCollection removes a collection.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, collectionPath(name), true, nil, nil)
}

// AddDocuments appends documents to a collection.
func (c *Client) AddDocuments(ctx context.Context, name string, docs []domdoc.Document) error {
	body := addDocumentsRequest{Documents: toDocumentDTOs(docs)}
	return c.do(ctx, http.MethodPost, collectionPath(name)+"/documents", true, body, nil)
}

// DeleteDocuments removes documents by server-assigned id.
func (c *Client) DeleteDocuments(ctx context.Context, name string, ids []string) error {
	body := deleteDocumentsRequest{DocumentIDs: ids}
	return c.do(ctx, http.MethodPost, collectionPath(name)+"/delete", true, body, nil)
}

// Search runs a query against a collection. Hits keep the service order.
func (c *Client) Search(ctx context.Context, name string, req *request.Request) ([]result.Result, error) {
	body := searchRequest{Query: req.Query(), K: req.K()}
	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, collectionPath(name)+"/search", true, body, &resp); err != nil {
		return nil, err
	}
	return fromDocumentDTOs(resp.Documents), nil
}

// CloseIdleConnections releases pooled transport connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func collectionPath(name string) string {
	return collectionsPath + "/" + url.PathEscape(name)
}

// do performs a single request. There are no retries.
func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	if auth {
		if err := c.ensureConnected(ctx); err != nil {
			return err
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return limiterError(ctx, err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request body: %w", domain.ErrValidation, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrValidation, err)
	}
	c.setHeaders(req, auth, body != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxBody)+1))
	if err != nil {
		return transportError(err)
	}
	if len(data) > c.maxBody {
		return fmt.Errorf("%w: response body exceeds %d bytes (status %d)",
			domain.ErrService, c.maxBody, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response body: %w", domain.ErrService, err)
	}
	return nil
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if c.Connected() {
		return nil
	}
	return c.Connect(ctx)
}

func (c *Client) setHeaders(req *http.Request, auth, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		c.mu.RLock()
		req.Header.Set("Authorization", "Bearer "+c.token)
		c.mu.RUnlock()
	} else if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
}

// transportError classifies a failed round trip as timeout or connection error.
// The cause stays in the chain.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrConnection, err)
}

func limiterError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrConnection, ctx.Err())
	}
	// Wait fails early when the deadline cannot accommodate the next token.
	return fmt.Errorf("%w: rate limiter: %w", domain.ErrTimeout, err)
}

func decodeError(status int, data []byte) error {
	var payload errorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.NewAPIError(status, "", truncate(strings.TrimSpace(string(data))))
	}
	msg := payload.Error
	if msg == "" && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			msg = s
		} else {
			msg = truncate(string(payload.Detail))
		}
	}
	return domain.NewAPIError(status, payload.Code, msg)
}

func truncate(s string) string {
	if len(s) <= maxErrorMessage {
		return s
	}
	cut := maxErrorMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
