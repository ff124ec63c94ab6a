package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"transitvet/domain/core"
	"transitvet/domain/lightcurve"
	"transitvet/domain/vet"
	apperrors "transitvet/internal/errors"
	"transitvet/internal/report"
	"transitvet/ports"
	"transitvet/vetters"
)

func (s *Server) handleSweet(w http.ResponseWriter, r *http.Request) {
	var req SweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body: "+err.Error()))
		return
	}

	series, err := lightcurve.NewSeries(req.Time, req.Flux, req.Unc)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sweet := vetters.NewSweet(s.sweetConfig(req.Options))
	result, err := sweet.RunSweet(r.Context(), series, req.Tce)
	if err != nil {
		s.writeError(w, err)
		return
	}

	envelope := result.ToReport(sweet.Name())
	if err := s.repo.SaveReport(r.Context(), envelope); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SweetResponse{ReportID: envelope.ID, Report: result})
}

func (s *Server) handleSweetBatch(w http.ResponseWriter, r *http.Request) {
	var req SweetBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body: "+err.Error()))
		return
	}
	if len(req.Tces) == 0 {
		s.writeError(w, apperrors.InvalidInput("batch needs at least one tce"))
		return
	}

	series, err := lightcurve.NewSeries(req.Time, req.Flux, req.Unc)
	if err != nil {
		s.writeError(w, err)
		return
	}

	engine := vetters.NewEngine(vetters.NewSweet(s.sweetConfig(req.Options)), s.vetting.MaxConcurrent)
	results, err := engine.VetAll(r.Context(), series, req.Tces)
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := make([]BatchItem, len(results))
	for i, res := range results {
		item := BatchItem{
			Index:      res.Index,
			Target:     res.Candidate.Target,
			DurationMS: float64(res.Duration.Microseconds()) / 1000.0,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			if err := s.repo.SaveReport(r.Context(), res.Report); err != nil {
				s.writeError(w, err)
				return
			}
			item.ReportID = res.Report.ID
			item.Report = res.Report
		}
		items[i] = item
	}

	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	filters := ports.ReportFilters{Limit: 50}
	q := r.URL.Query()
	if target := q.Get("target"); target != "" {
		key := core.TargetKey(target)
		filters.Target = &key
	}
	if vetter := q.Get("vetter"); vetter != "" {
		filters.Vetter = &vetter
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			s.writeError(w, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		filters.Limit = n
	}
	if offset := q.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			s.writeError(w, apperrors.InvalidInput("offset must be a non-negative integer"))
			return
		}
		filters.Offset = n
	}

	reports, err := s.repo.ListReports(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.Markdown(rep)))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.HTML(report.Markdown(rep)))
}

// loadReport resolves the {id} path param to a stored report, writing the
// error response itself when the lookup fails
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*vet.Report, bool) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	rep, err := s.repo.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return rep, true
}

// sweetConfig merges per-request options over the server defaults
func (s *Server) sweetConfig(opts *SweetOptions) vetters.SweetConfig {
	cfg := vetters.SweetConfig{
		ThresholdSigma: s.vetting.ThresholdSigma,
		NumDurations:   s.vetting.NumDurations,
		DetrendWindow:  s.vetting.DetrendWindow,
	}
	if opts == nil {
		return cfg
	}
	if opts.ThresholdSigma > 0 {
		cfg.ThresholdSigma = opts.ThresholdSigma
	}
	if opts.NumDurations > 0 {
		cfg.NumDurations = opts.NumDurations
	}
	if opts.DetrendWindow > 0 {
		cfg.DetrendWindow = opts.DetrendWindow
	}
	return cfg
}
