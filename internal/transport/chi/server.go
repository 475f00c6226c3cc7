package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ohler55/ojg/oj"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/david-caro/inspire-matcher/internal/compiler"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/query"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
	matchinguc "github.com/david-caro/inspire-matcher/internal/usecase/matching"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Server serves the matcher HTTP API.
type Server struct {
	matching      *matchinguc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(matching *matchinguc.Service, logger *zap.Logger) *Server {
	return &Server{
		matching:      matching,
		logger:        logger,
		maxBodyBytes:  DefaultMaxBodyBytes,
		errorHandlers: defaultErrorHandlers,
	}
}

// WithMaxBodyBytes limits request body size.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/compile", s.Compile)
	r.Get("/algorithms", s.ListAlgorithms)
	r.Post("/algorithms/{name}/compile", s.CompileAlgorithm)
}

// CompiledQuery is one compiled specification in API responses. Body is the
// search request body and is omitted for absent nested queries.
type CompiledQuery struct {
	Type    match.Type       `json:"type"`
	Outcome compiler.Outcome `json:"outcome"`
	Body    *query.Envelope  `json:"body,omitempty"`
}

// AlgorithmCompileResponse is returned by POST /algorithms/{name}/compile.
type AlgorithmCompileResponse struct {
	Algorithm string          `json:"algorithm"`
	Queries   []CompiledQuery `json:"queries"`
}

// AlgorithmSummary describes one configured algorithm.
type AlgorithmSummary struct {
	Name    string           `json:"name"`
	Queries []map[string]any `json:"queries"`
}

// AlgorithmListResponse is returned by GET /algorithms.
type AlgorithmListResponse struct {
	Algorithms []AlgorithmSummary `json:"algorithms"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Algorithms int    `json:"algorithms"`
}

// Compile handles POST /compile with body {"specification": {...}, "record": {...}}.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	rawSpec, ok := body["specification"].(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "specification object is required")
		return
	}
	spec, err := match.Decode(rawSpec)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	c, err := s.matching.Compile(r.Context(), spec, record.FromAny(body["record"]))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, compiledToResponse(c))
}

// CompileAlgorithm handles POST /algorithms/{name}/compile with body {"record": {...}}.
// Only queries carrying match signal are returned.
func (s *Server) CompileAlgorithm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	results, err := s.matching.CompileAlgorithm(r.Context(), name, record.FromAny(body["record"]))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := AlgorithmCompileResponse{
		Algorithm: name,
		Queries:   make([]CompiledQuery, 0, len(results)),
	}
	for _, c := range results {
		resp.Queries = append(resp.Queries, compiledToResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAlgorithms handles GET /algorithms.
func (s *Server) ListAlgorithms(w http.ResponseWriter, _ *http.Request) {
	algs := s.matching.Algorithms()
	resp := AlgorithmListResponse{Algorithms: make([]AlgorithmSummary, 0, len(algs))}
	for _, a := range algs {
		summary := AlgorithmSummary{Name: a.Name, Queries: make([]map[string]any, 0, len(a.Queries))}
		for _, q := range a.Queries {
			summary.Queries = append(summary.Queries, match.Encode(q))
		}
		resp.Algorithms = append(resp.Algorithms, summary)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Algorithms: len(s.matching.Algorithms()),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readBody parses a JSON object body. It writes the error response itself.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}

	parsed, err := oj.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	body, ok := parsed.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return body, true
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

func compiledToResponse(c compiler.Compiled) CompiledQuery {
	resp := CompiledQuery{Type: c.Type, Outcome: c.Outcome}
	if !c.Query.IsZero() {
		q := c.Query
		resp.Body = &q
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
