package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"transitvet/domain/core"
	"transitvet/internal/config"
	apperrors "transitvet/internal/errors"
	"transitvet/internal/logging"
	"transitvet/ports"
)

// Server exposes vetting over a JSON API
type Server struct {
	router  *chi.Mux
	repo    ports.ReportRepository
	vetting config.VettingConfig
	logger  *logging.Logger
}

// NewServer builds the router with middleware and routes. The vetting config
// supplies defaults that per-request options may override.
func NewServer(repo ports.ReportRepository, vetting config.VettingConfig) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		repo:    repo,
		vetting: vetting,
		logger:  logging.Default.WithComponent("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the handler for mounting in an http.Server
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/api/v1/sweet", s.handleSweet)
	s.router.Post("/api/v1/sweet/batch", s.handleSweetBatch)
	s.router.Get("/api/v1/reports", s.handleListReports)
	s.router.Get("/api/v1/reports/{id}", s.handleGetReport)
	s.router.Get("/api/v1/reports/{id}/markdown", s.handleReportMarkdown)
	s.router.Get("/api/v1/reports/{id}/html", s.handleReportHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response body with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed: %v", err)
	}
}

// writeError classifies an error and writes the uniform error body: shape,
// value, and range failures are the caller's fault (400), missing reports
// are 404, anything else is a server-side 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err) || apperrors.GetCode(err) == apperrors.CodeNotFound:
		status = http.StatusNotFound
	case core.IsShapeError(err) || core.IsValueError(err) || core.IsRangeError(err):
		status = http.StatusBadRequest
	case apperrors.GetCode(err) == apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}

	code := apperrors.GetCode(err)
	if code == "UNKNOWN" {
		code = ""
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
