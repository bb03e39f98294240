package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConnection signals an unreachable service, a reset transport or rejected credentials.
	ErrConnection = errors.New("connection error")
	// ErrTimeout signals an exceeded deadline.
	ErrTimeout = errors.New("timeout")
	// ErrValidation signals a malformed request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals an unknown collection or document.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a duplicate collection name.
	ErrConflict = errors.New("conflict")
	// ErrService signals a remote-side failure or a malformed response.
	ErrService = errors.New("service error")
	// ErrRateLimited signals that the service throttled the request.
	// It matches ErrService as well.
	ErrRateLimited = fmt.Errorf("rate limited: %w", ErrService)

	// ErrClientClosed is returned by operations on a closed client.
	ErrClientClosed = fmt.Errorf("client closed: %w", ErrConnection)
)

// APIError is an error reported by the colbertDB service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Kind       error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status %d, code %s)", e.Kind, msg, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Kind, msg, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Kind }

// Unauthorized reports whether the service rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Codes understood in error payloads.
var codeKinds = map[string]error{
	"validation_failed":         ErrValidation,
	"bad_request":               ErrValidation,
	"invalid_request":           ErrValidation,
	"not_found":                 ErrNotFound,
	"collection_not_found":      ErrNotFound,
	"document_not_found":        ErrNotFound,
	"already_exists":            ErrConflict,
	"collection_already_exists": ErrConflict,
	"conflict":                  ErrConflict,
	"rate_limited":              ErrRateLimited,
	"unauthorized":              ErrConnection,
	"internal_error":            ErrService,
}

// KindFor maps a payload code and HTTP status to an error kind.
// A recognized code wins over the status.
func KindFor(status int, code string) error {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrConnection
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusRequestTimeout:
		return ErrTimeout
	case status >= 500:
		return ErrService
	case status >= 400:
		return ErrValidation
	default:
		return ErrService
	}
}

// NewAPIError builds an APIError with its kind resolved from status and code.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Kind:       KindFor(status, code),
	}
}
