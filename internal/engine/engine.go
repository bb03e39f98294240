// Package engine is an in-memory colbertDB stand-in.
// Each collection owns a memory-only bleve index used for relevance ranking.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

const (
	indexFieldContent = "content"
	indexingBatchSize = 100
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already exists")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInvalidDocuments   = errors.New("invalid documents")
	ErrClosed             = errors.New("engine closed")
)

// Document is a stored document.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Hit is a ranked search match.
type Hit struct {
	Document
	Score float64
}

type collection struct {
	index bleve.Index
	docs  map[string]Document
}

// Engine holds collections grouped by store. Safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	stores map[string]map[string]*collection
	closed bool
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{stores: make(map[string]map[string]*collection)}
}

// Create builds a collection from docs. With force an existing collection
// of the same name is replaced; otherwise ErrCollectionExists is returned.
// Returns the assigned document ids in input order.
func (e *Engine) Create(store, name string, docs []Document, force bool) ([]string, error) {
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	cols := e.stores[store]
	if cols == nil {
		cols = make(map[string]*collection)
		e.stores[store] = cols
	}
	old, exists := cols[name]
	if exists && !force {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	col := &collection{index: idx, docs: make(map[string]Document, len(docs))}
	ids, err := col.add(docs)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	if exists {
		_ = old.index.Close()
	}
	cols[name] = col
	return ids, nil
}

// Exists reports whether a collection exists.
func (e *Engine) Exists(store, name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.stores[store][name]
	return ok
}

// List returns collection names in the store, sorted.
func (e *Engine) List(store string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.stores[store]))
	for name := range e.stores[store] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Drop removes a collection.
func (e *Engine) Drop(store, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.stores[store][name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(e.stores[store], name)
	if err := col.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// Add appends documents to a collection and returns their ids.
func (e *Engine) Add(store, name string, docs []Document) ([]string, error) {
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.stores[store][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return col.add(docs)
}

// DeleteDocuments removes documents by id. If any id is unknown
// nothing is removed and ErrDocumentNotFound is returned.
func (e *Engine) DeleteDocuments(store, name string, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.stores[store][name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	for _, id := range ids {
		if _, ok := col.docs[id]; !ok {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
	}

	batch := col.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := col.index.Batch(batch); err != nil {
		return fmt.Errorf("delete from index: %w", err)
	}
	for _, id := range ids {
		delete(col.docs, id)
	}
	return nil
}

// Search returns up to k documents matching query, best first.
func (e *Engine) Search(store, name, query string, k int) ([]Hit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	col, ok := e.stores[store][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	q := bleve.NewMatchQuery(query)
	q.SetField(indexFieldContent)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)

	res, err := col.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc, ok := col.docs[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Document: doc, Score: h.Score})
	}
	return hits, nil
}

// Close releases every index. The engine cannot be reused.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	var errs []error
	for _, cols := range e.stores {
		for _, col := range cols {
			errs = append(errs, col.index.Close())
		}
	}
	e.stores = nil
	return errors.Join(errs...)
}

func (c *collection) add(docs []Document) ([]string, error) {
	ids := make([]string, len(docs))
	staged := make([]Document, len(docs))
	batch := c.index.NewBatch()

	for i, doc := range docs {
		id := uuid.NewString()
		ids[i] = id
		staged[i] = Document{ID: id, Content: doc.Content, Metadata: cloneMetadata(doc.Metadata)}

		if err := batch.Index(id, map[string]any{indexFieldContent: doc.Content}); err != nil {
			return nil, fmt.Errorf("index document: %w", err)
		}
		if batch.Size() >= indexingBatchSize {
			if err := c.index.Batch(batch); err != nil {
				return nil, fmt.Errorf("index batch: %w", err)
			}
			batch = c.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := c.index.Batch(batch); err != nil {
			return nil, fmt.Errorf("index batch: %w", err)
		}
	}

	for _, doc := range staged {
		c.docs[doc.ID] = doc
	}
	return ids, nil
}

func validateDocuments(docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: at least one document is required", ErrInvalidDocuments)
	}
	for i, d := range docs {
		if d.Content == "" {
			return fmt.Errorf("%w: document %d has empty content", ErrInvalidDocuments, i)
		}
	}
	return nil
}

func newIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = standard.Name
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldContent, contentFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
