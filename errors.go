package colbertdb

import (
	"errors"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

// Error kinds re-exported from the domain layer.
// Every failure returned by this package matches exactly one of them; use errors.Is().
var (
	ErrConnection  = domain.ErrConnection
	ErrTimeout     = domain.ErrTimeout
	ErrValidation  = domain.ErrValidation
	ErrNotFound    = domain.ErrNotFound
	ErrConflict    = domain.ErrConflict
	ErrService     = domain.ErrService
	ErrRateLimited = domain.ErrRateLimited

	// ErrClientClosed matches ErrConnection as well.
	ErrClientClosed = domain.ErrClientClosed
)

// APIError is a failure reported by the colbertDB server.
// It keeps the HTTP status, the server's error code and its message.
type APIError = domain.APIError

// AsAPIError extracts *APIError from an error.
//
// Example:
//
//	if e, ok := colbertdb.AsAPIError(err); ok && e.Unauthorized() {
//	    // refresh the API key
//	}
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
