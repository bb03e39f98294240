package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

// Request is a validated search query.
type Request struct {
	query string
	k     int
}

// New validates search parameters.
// Query must be non-blank and k positive; nothing is defaulted.
func New(query string, k int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	if k <= 0 {
		return Request{}, fmt.Errorf("%w: k must be positive, got %d", domain.ErrValidation, k)
	}
	return Request{query: query, k: k}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// K returns the requested maximum number of results.
func (r *Request) K() int { return r.k }
