package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/archivex/facetd/internal/domain"
	"github.com/archivex/facetd/internal/domain/facet"
	healthuc "github.com/archivex/facetd/internal/usecase/health"
	searchuc "github.com/archivex/facetd/internal/usecase/search"
)

// Error codes returned to clients.
const (
	codeBadRequest        = "bad_request"
	codeUnknownFacet      = "unknown_facet"
	codeInvalidFilter     = "invalid_filter"
	codeEngineUnavailable = "engine_unavailable"
	codeInternalError     = "internal_error"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// suggester abstracts the suggestion path so the caching decorator can
// sit between the transport and the use case.
type suggester interface {
	Suggest(ctx context.Context, state facet.State, facetName, typed string, limit int) ([]facet.Suggestion, error)
}

// Server exposes the faceted search API over HTTP.
type Server struct {
	search        *searchuc.Service
	suggest       suggester
	health        *healthuc.Service
	registry      facet.Registry
	exportColumns []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. exportColumns is the default
// column set for CSV exports when the request names none.
func NewServer(
	search *searchuc.Service,
	suggest suggester,
	health *healthuc.Service,
	registry facet.Registry,
	exportColumns []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:        search,
		suggest:       suggest,
		health:        health,
		registry:      registry,
		exportColumns: exportColumns,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownFacet, http.StatusBadRequest, codeUnknownFacet),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, codeEngineUnavailable),
	}
	return s
}

// Routes mounts the API endpoints on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/api/v1/search", s.SearchDocuments)
	r.Post("/api/v1/suggest", s.SuggestTerms)
	r.Post("/api/v1/export", s.ExportCSV)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchDocuments handles POST /api/v1/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := s.queryFromRequest(req.Filters, req.Sort, req.From, req.Size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentDTO, len(page.Documents))
	for i := range page.Documents {
		d := &page.Documents[i]
		items[i] = documentDTO{
			ID:         d.ID(),
			Score:      d.Score(),
			Source:     d.Source(),
			Highlights: d.Highlights(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items: items,
		Total: page.Total,
		From:  q.From,
		Size:  q.Size,
	})
}

// SuggestTerms handles POST /api/v1/suggest.
func (s *Server) SuggestTerms(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Facet == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "facet name is required")
		return
	}

	state, err := stateFromDTO(s.registry, req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	suggestions, err := s.suggest.Suggest(r.Context(), state, req.Facet, req.Typed, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if suggestions == nil {
		suggestions = []facet.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Items: suggestions})
}

// ExportCSV handles POST /api/v1/export. The response streams, so any
// failure after the first row can only be logged, not reported.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := s.queryFromRequest(req.Filters, req.Sort, 0, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = s.exportColumns
	}
	if len(columns) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "no export columns configured or requested")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="export-`+time.Now().UTC().Format("20060102-150405")+`.csv"`)

	if err := s.search.Export(r.Context(), q, columns, w); err != nil {
		s.logger.Error("csv export aborted", zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) queryFromRequest(
	filters map[string]filterValue, sorts []sortDTO, from, size int,
) (searchuc.Query, error) {
	state, err := stateFromDTO(s.registry, filters)
	if err != nil {
		return searchuc.Query{}, err
	}
	sort, err := sortFromDTO(sorts)
	if err != nil {
		return searchuc.Query{}, err
	}
	if from < 0 {
		from = 0
	}
	return searchuc.Query{Filters: state, Sort: sort, From: from, Size: size}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownFacet,
		domain.ErrInvalidFilter,
		domain.ErrEngineUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
