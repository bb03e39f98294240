// Package chi serves the colbertDB HTTP API on top of the in-memory engine.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/colbertdb-go/internal/engine"
	logpkg "github.com/kailas-cloud/colbertdb-go/internal/logger"
	"github.com/kailas-cloud/colbertdb-go/internal/metrics"
)

// Error codes carried in the "code" field of error responses.
const (
	codeBadRequest              = "bad_request"
	codeValidationFailed        = "validation_failed"
	codeUnauthorized            = "unauthorized"
	codeCollectionNotFound      = "collection_not_found"
	codeDocumentNotFound        = "document_not_found"
	codeCollectionAlreadyExists = "collection_already_exists"
	codeRateLimited             = "rate_limited"
	codeInternalError           = "internal_error"
)

// errorHandler tries to handle an engine error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Config holds the API server settings.
type Config struct {
	// APIKeys accepted on connect. Empty allows anonymous access.
	APIKeys []string
	// Stores that may be connected to. Empty allows any store name.
	Stores []string
	// RateLimit caps requests per second across all clients. Zero disables it.
	RateLimit float64
	RateBurst int
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Server implements the colbertDB HTTP API.
type Server struct {
	engine        *engine.Engine
	auth          *authenticator
	validate      *requestValidator
	limiter       *rate.Limiter
	metrics       *metrics.Metrics
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an API server over eng.
func NewServer(eng *engine.Engine, cfg Config, logger *zap.Logger) (*Server, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	s := &Server{
		engine:   eng,
		auth:     newAuthenticator(cfg.APIKeys, cfg.Stores),
		validate: v,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(engine.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(engine.ErrCollectionNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(engine.ErrCollectionExists, http.StatusConflict, codeCollectionAlreadyExists),
		sentinelHandler(engine.ErrInvalidDocuments, http.StatusBadRequest, codeValidationFailed),
	}
	return s, nil
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.Middleware())
		r.Use(s.rateLimitMiddleware)
		r.Post("/client/connect/{store}", s.Connect)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.middleware)
			r.Get("/collections", s.ListCollections)
			r.Get("/collections/", s.ListCollections)
			r.Post("/collections", s.CreateCollection)
			r.Post("/collections/", s.CreateCollection)
			r.Get("/collections/{collection}", s.GetCollection)
			r.Delete("/collections/{collection}", s.DeleteCollection)
			r.Post("/collections/{collection}/search", s.Search)
			r.Post("/collections/{collection}/documents", s.AddDocuments)
			r.Post("/collections/{collection}/delete", s.DeleteDocuments)
		})
	})
}

// Connect handles POST /api/v1/client/connect/{store}.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	store, ok := pathParam(w, r, "store")
	if !ok {
		return
	}
	token, err := s.auth.connect(r.Header.Get(apiKeyHeader), store)
	if err != nil {
		logpkg.FromContext(r.Context(), s.logger).
			Info("connect rejected", zap.String("store", store), zap.Error(err))
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, connectResponse{AccessToken: token})
}

// CreateCollection handles POST /api/v1/collections/.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	ids, err := s.engine.Create(storeFromContext(r.Context()), req.Name,
		documentsFromRequest(req.Documents), req.Options.ForceCreate)
	if err != nil {
		s.handleEngineError(w, r, err)
		return
	}
	s.metrics.DocumentsIndexed(len(ids))

	writeJSON(w, http.StatusCreated, collectionResponse{Name: req.Name, DocumentIDs: ids})
}

// ListCollections handles GET /api/v1/collections/.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	names := s.engine.List(storeFromContext(r.Context()))
	writeJSON(w, http.StatusOK, listCollectionsResponse{Collections: names})
}

// GetCollection handles GET /api/v1/collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return
	}
	if !s.engine.Exists(storeFromContext(r.Context()), name) {
		writeError(w, http.StatusNotFound, codeCollectionNotFound, "collection not found: "+name)
		return
	}
	exists := true
	writeJSON(w, http.StatusOK, collectionResponse{Name: name, Exists: &exists})
}

// DeleteCollection handles DELETE /api/v1/collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return
	}
	if err := s.engine.Drop(storeFromContext(r.Context()), name); err != nil {
		s.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDocuments handles POST /api/v1/collections/{collection}/documents.
func (s *Server) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req addDocumentsRequest
	if !s.decode(w, r, &req) {
		return
	}
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return
	}

	ids, err := s.engine.Add(storeFromContext(r.Context()), name, documentsFromRequest(req.Documents))
	if err != nil {
		s.handleEngineError(w, r, err)
		return
	}
	s.metrics.DocumentsIndexed(len(ids))
	writeJSON(w, http.StatusOK, collectionResponse{Name: name, DocumentIDs: ids})
}

// DeleteDocuments handles POST /api/v1/collections/{collection}/delete.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req deleteDocumentsRequest
	if !s.decode(w, r, &req) {
		return
	}
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return
	}

	if err := s.engine.DeleteDocuments(storeFromContext(r.Context()), name, req.DocumentIDs); err != nil {
		s.handleEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse{Name: name})
}

// Search handles POST /api/v1/collections/{collection}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return
	}

	hits, err := s.engine.Search(storeFromContext(r.Context()), name, req.Query, req.K)
	if err != nil {
		s.handleEngineError(w, r, err)
		return
	}
	s.metrics.SearchServed(len(hits))

	docs := make([]documentResponse, len(hits))
	for i, h := range hits {
		docs[i] = documentResponse{
			ID:       h.ID,
			Content:  h.Content,
			Metadata: h.Metadata,
			Score:    h.Score,
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Documents: docs})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decode reads and validates a JSON body. Writes the error response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Validate(v); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return false
	}
	return true
}

// pathParam returns a URL parameter in unescaped form. Chi matches on
// RawPath when the request has one, so "a;b" arrives as "a%3Bb" there.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, true
	}
	unescaped, err := url.PathUnescape(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid "+key+" in path: "+err.Error())
		return "", false
	}
	return unescaped, true
}

func (s *Server) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("engine error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
