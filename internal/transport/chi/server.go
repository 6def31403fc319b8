// Package chi exposes the question pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
	askuc "github.com/deshdata/voterquery/internal/usecase/ask"
	healthuc "github.com/deshdata/voterquery/internal/usecase/health"
)

// maxQuestionLen bounds the accepted question size in bytes.
const maxQuestionLen = 2000

// Asker runs the question pipeline, with or without the generation step.
type Asker interface {
	Ask(ctx context.Context, question string) (askuc.Response, error)
	Search(ctx context.Context, question string) (askuc.Response, error)
}

// StatsReader serves dataset statistics and direct record lookups.
type StatsReader interface {
	Stats() (registry.Statistics, error)
	Voter(id string) (*domain.VoterRecord, error)
}

// Reloader rebuilds and republishes the snapshot and vector index.
type Reloader interface {
	Reload(ctx context.Context) (int, error)
}

// HealthChecker aggregates component availability.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the API.
type Server struct {
	ask           Asker
	stats         StatsReader
	reload        Reloader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ask Asker, stats StatsReader, reload Reloader, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		ask:    ask,
		stats:  stats,
		reload: reload,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSnapshotNotReady, http.StatusServiceUnavailable, CodeSnapshotNotReady),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusBadGateway, CodeRetrievalUnavailable),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, CodeGenerationUnavailable),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, CodeVoterNotFound),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusUnprocessableEntity, CodeDumpMalformed),
	}
	return s
}

// Routes mounts the API handlers on the given router.
func (s *Server) Routes(r gochi.Router) {
	r.Route("/v1", func(r gochi.Router) {
		r.Post("/ask", s.Ask)
		r.Post("/search", s.Search)
		r.Get("/stats", s.Stats)
		r.Get("/voters/{id}", s.GetVoter)
		r.Post("/admin/reload", s.Reload)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	question, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	resp, err := s.ask.Ask(r.Context(), question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:    resp.Answer,
		Intent:    string(resp.Intent.Kind),
		Language:  string(resp.Intent.Language),
		Reason:    string(resp.Result.Reason()),
		Truncated: resp.Payload.Truncated,
		FollowUp:  resp.Intent.FollowUp,
		Sources:   matchesToResponse(resp.Result.Matches),
		Aggregate: aggregateToResponse(resp.Result.Aggregate),
	})
}

// Search handles POST /v1/search: retrieval without generation.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	question, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	resp, err := s.ask.Search(r.Context(), question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Intent:    string(resp.Intent.Kind),
		Language:  string(resp.Intent.Language),
		Reason:    string(resp.Result.Reason()),
		Truncated: resp.Payload.Truncated,
		FollowUp:  resp.Intent.FollowUp,
		Context:   resp.Payload.Text,
		Matches:   matchesToResponse(resp.Result.Matches),
		Aggregate: aggregateToResponse(resp.Result.Aggregate),
	})
}

// Stats handles GET /v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}

// GetVoter handles GET /v1/voters/{id}.
func (s *Server) GetVoter(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "voter id is required")
		return
	}

	rec, err := s.stats.Voter(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voterToResponse(rec))
}

// Reload handles POST /v1/admin/reload.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := s.reload.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Records: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return "", false
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "question is required")
		return "", false
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "question is too long")
		return "", false
	}
	return question, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSnapshotNotReady,
		domain.ErrRetrievalUnavailable,
		domain.ErrGenerationUnavailable,
		domain.ErrRecordNotFound,
		domain.ErrMalformedRecord,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
