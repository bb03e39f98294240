package colbertdb

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/colbertdb-go/internal/domain/document"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/request"
)

// Collection is a handle to a server-side collection.
// It holds only the name and the owning Client; the server is the source of truth.
type Collection struct {
	name   string
	client *Client
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// AddDocuments appends documents. Validation matches CreateCollection.
// Returns the same handle.
func (c *Collection) AddDocuments(ctx context.Context, docs []Document) (col *Collection, err error) {
	start := time.Now()
	defer func() { c.client.obs.observe("documents.add", c.name, start, err) }()

	if err := c.client.checkOpen(); err != nil {
		return nil, err
	}
	domDocs, err := toDomainDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("add documents to %q: %w", c.name, err)
	}
	if err := c.client.api.AddDocuments(ctx, c.name, domDocs); err != nil {
		return nil, fmt.Errorf("add documents to %q: %w", c.name, err)
	}
	return c, nil
}

// DeleteDocuments removes documents by server-assigned id.
// If any id is unknown the call fails with ErrNotFound and nothing is deleted.
func (c *Collection) DeleteDocuments(ctx context.Context, ids []string) (col *Collection, err error) {
	start := time.Now()
	defer func() { c.client.obs.observe("documents.delete", c.name, start, err) }()

	if err := c.client.checkOpen(); err != nil {
		return nil, err
	}
	if err := domdoc.ValidateIDs(ids); err != nil {
		return nil, fmt.Errorf("delete documents from %q: %w", c.name, err)
	}
	if err := c.client.api.DeleteDocuments(ctx, c.name, ids); err != nil {
		return nil, fmt.Errorf("delete documents from %q: %w", c.name, err)
	}
	return c, nil
}

// Search returns at most k documents ranked by the server, most relevant first.
// A blank query or k <= 0 fails with ErrValidation before any request is made.
func (c *Collection) Search(ctx context.Context, query string, k int) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.client.obs.observe("search", c.name, start, err) }()

	if err := c.client.checkOpen(); err != nil {
		return SearchResult{}, err
	}
	req, err := request.New(query, k)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %q: %w", c.name, err)
	}
	results, err := c.client.api.Search(ctx, c.name, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %q: %w", c.name, err)
	}
	if len(results) > k {
		results = results[:k]
	}
	return SearchResult{
		Query:     query,
		K:         k,
		Documents: fromDomainResults(results),
	}, nil
}

// Delete removes the collection on the server. The handle must not be used afterwards.
func (c *Collection) Delete(ctx context.Context) error {
	return c.client.DeleteCollection(ctx, c.name)
}
