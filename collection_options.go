package colbertdb

import domcol "github.com/kailas-cloud/colbertdb-go/internal/domain/collection"

// CollectionOption configures collection creation.
type CollectionOption interface {
	applyCollection(*domcol.Options)
}

// collectionOptionFunc adapts a function to the CollectionOption interface.
type collectionOptionFunc func(*domcol.Options)

func (f collectionOptionFunc) applyCollection(o *domcol.Options) { f(o) }

// ForceCreate replaces an existing collection with the same name
// instead of failing with ErrConflict.
func ForceCreate() CollectionOption {
	return collectionOptionFunc(func(o *domcol.Options) {
		o.ForceCreate = true
	})
}
