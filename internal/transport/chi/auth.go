package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const apiKeyHeader = "x-api-key"

var (
	errInvalidAPIKey   = errors.New("invalid api key")
	errStoreNotAllowed = errors.New("store not allowed")
)

type storeCtxKey struct{}

// storeFromContext returns the store bound to the request's access token.
func storeFromContext(ctx context.Context) string {
	s, _ := ctx.Value(storeCtxKey{}).(string)
	return s
}

// authenticator exchanges API keys for access tokens and checks Bearer tokens.
// Each token is bound to the store it was issued for.
type authenticator struct {
	apiKeys map[string]struct{}
	stores  map[string]struct{}

	mu     sync.RWMutex
	tokens map[string]string
}

func newAuthenticator(apiKeys, stores []string) *authenticator {
	a := &authenticator{
		apiKeys: make(map[string]struct{}, len(apiKeys)),
		stores:  make(map[string]struct{}, len(stores)),
		tokens:  make(map[string]string),
	}
	for _, k := range apiKeys {
		if k != "" {
			a.apiKeys[k] = struct{}{}
		}
	}
	for _, s := range stores {
		if s != "" {
			a.stores[s] = struct{}{}
		}
	}
	return a
}

// connect validates the key and store and issues a new token.
// With no configured keys any caller is accepted.
func (a *authenticator) connect(apiKey, store string) (string, error) {
	if len(a.apiKeys) > 0 {
		if _, ok := a.apiKeys[apiKey]; !ok {
			return "", errInvalidAPIKey
		}
	}
	if len(a.stores) > 0 {
		if _, ok := a.stores[store]; !ok {
			return "", errStoreNotAllowed
		}
	}
	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = store
	a.mu.Unlock()
	return token, nil
}

func (a *authenticator) storeFor(token string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.tokens[token]
	return s, ok
}

// middleware rejects requests without a valid Bearer token
// and places the token's store in the request context.
func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(auth, bearerPrefix) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
			return
		}

		store, ok := a.storeFor(auth[len(bearerPrefix):])
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), storeCtxKey{}, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
