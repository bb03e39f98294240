package colbertdb

import (
	"context"

	domcol "github.com/kailas-cloud/colbertdb-go/internal/domain/collection"
	domdoc "github.com/kailas-cloud/colbertdb-go/internal/domain/document"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/request"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/result"
)

// mockAPI implements apiClient. Unset functions panic when called,
// which flags unexpected network calls in validation tests.
type mockAPI struct {
	connectFn          func(ctx context.Context) error
	createFn           func(ctx context.Context, name string, docs []domdoc.Document, opts domcol.Options) (string, error)
	getFn              func(ctx context.Context, name string) error
	listFn             func(ctx context.Context) ([]string, error)
	deleteFn           func(ctx context.Context, name string) error
	addFn              func(ctx context.Context, name string, docs []domdoc.Document) error
	deleteDocumentsFn  func(ctx context.Context, name string, ids []string) error
	searchFn           func(ctx context.Context, name string, req *request.Request) ([]result.Result, error)
	closeIdleCallCount int
}

func (m *mockAPI) Connect(ctx context.Context) error { return m.connectFn(ctx) }

func (m *mockAPI) CreateCollection(
	ctx context.Context, name string, docs []domdoc.Document, opts domcol.Options,
) (string, error) {
	return m.createFn(ctx, name, docs, opts)
}

func (m *mockAPI) GetCollection(ctx context.Context, name string) error {
	return m.getFn(ctx, name)
}

func (m *mockAPI) ListCollections(ctx context.Context) ([]string, error) {
	return m.listFn(ctx)
}

func (m *mockAPI) DeleteCollection(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

func (m *mockAPI) AddDocuments(ctx context.Context, name string, docs []domdoc.Document) error {
	return m.addFn(ctx, name, docs)
}

func (m *mockAPI) DeleteDocuments(ctx context.Context, name string, ids []string) error {
	return m.deleteDocumentsFn(ctx, name, ids)
}

func (m *mockAPI) Search(ctx context.Context, name string, req *request.Request) ([]result.Result, error) {
	return m.searchFn(ctx, name, req)
}

func (m *mockAPI) CloseIdleConnections() { m.closeIdleCallCount++ }

func newTestClient(api *mockAPI) *Client {
	return newClient(api, nil, DefaultStore)
}
