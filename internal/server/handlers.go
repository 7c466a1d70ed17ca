package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/happydash/internal/analysis"
)

// badRequest marks malformed filter parameters.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// DashboardResponse is everything the charts and KPI card need for one selection.
type DashboardResponse struct {
	Spec    analysis.FilterSpec      `json:"spec"`
	Stats   analysis.SummaryStats    `json:"stats"`
	KPIs    []string                 `json:"kpis"`
	View    analysis.FilteredView    `json:"view"`
	Series  []analysis.CountrySeries `json:"series"`
	Scatter []analysis.ScatterPoint  `json:"scatter"`
}

type dashboardRequest struct {
	Years      []int    `json:"years"`
	Countries  []string `json:"countries"`
	ScoreRange *struct {
		Low  *float64 `json:"low"`
		High *float64 `json:"high"`
	} `json:"score_range"`
}

// HealthCheck reports liveness.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// GetOptions returns the selectable years, countries and score bounds.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	if s.optionsErr != nil {
		s.writeError(w, r, s.optionsErr)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.options)
}

// GetDashboard reads the selection from the query string:
// year (repeatable or comma-separated), country (repeatable), min, max.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	spec, err := s.specFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, spec)
}

// PostDashboard reads the selection from a JSON body.
func (s *Server) PostDashboard(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, &badRequest{msg: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}
	spec := s.defaultSpec()
	spec.Years = req.Years
	spec.Countries = req.Countries
	if req.ScoreRange != nil {
		if req.ScoreRange.Low != nil {
			spec.ScoreRange.Low = *req.ScoreRange.Low
		}
		if req.ScoreRange.High != nil {
			spec.ScoreRange.High = *req.ScoreRange.High
		}
	}
	s.respond(w, r, spec)
}

// SummaryPage renders the summary report as HTML for the query's selection.
func (s *Server) SummaryPage(w http.ResponseWriter, r *http.Request) {
	spec, err := s.specFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, stats, err := s.update(spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report := analysis.NewReport(s.ds.Name, spec, view, stats, s.cfg.TopCorrelations)
	page, err := renderPage(report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, spec analysis.FilterSpec) {
	view, stats, err := s.update(spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report := analysis.NewReport(s.ds.Name, spec, view, stats, s.cfg.TopCorrelations)
	s.writeJSON(w, r, http.StatusOK, DashboardResponse{
		Spec:    spec,
		Stats:   stats,
		KPIs:    report.KPIs(),
		View:    view,
		Series:  analysis.Series(view),
		Scatter: analysis.Scatter(view),
	})
}

// update runs the engine and records metrics.
func (s *Server) update(spec analysis.FilterSpec) (analysis.FilteredView, analysis.SummaryStats, error) {
	start := time.Now()
	view, stats, err := s.engine.Update(s.ds, spec)
	updateDuration.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		updatesTotal.WithLabelValues("ok").Inc()
		updateRows.Observe(float64(view.Len()))
	case errors.As(err, new(*analysis.InvalidRangeError)):
		updatesTotal.WithLabelValues("invalid_range").Inc()
	default:
		updatesTotal.WithLabelValues("error").Inc()
	}
	return view, stats, err
}

// defaultSpec selects everything; the score range spans the dataset.
func (s *Server) defaultSpec() analysis.FilterSpec {
	return analysis.FilterSpec{ScoreRange: analysis.ScoreRange{Low: s.options.ScoreMin, High: s.options.ScoreMax}}
}

func (s *Server) specFromQuery(q url.Values) (analysis.FilterSpec, error) {
	spec := s.defaultSpec()
	for _, key := range []string{"year", "years"} {
		for _, raw := range q[key] {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				y, err := strconv.Atoi(part)
				if err != nil {
					return spec, &badRequest{msg: fmt.Sprintf("invalid year %q", part)}
				}
				spec.Years = append(spec.Years, y)
			}
		}
	}
	for _, key := range []string{"country", "countries"} {
		for _, c := range q[key] {
			if c = strings.TrimSpace(c); c != "" {
				spec.Countries = append(spec.Countries, c)
			}
		}
	}
	if v := q.Get("min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, &badRequest{msg: fmt.Sprintf("invalid min %q", v)}
		}
		spec.ScoreRange.Low = f
	}
	if v := q.Get("max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, &badRequest{msg: fmt.Sprintf("invalid max %q", v)}
		}
		spec.ScoreRange.High = f
	}
	return spec, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var (
		br  *badRequest
		ire *analysis.InvalidRangeError
		ede *analysis.EmptyDatasetError
	)
	switch {
	case errors.As(err, &br), errors.As(err, &ire):
		status = http.StatusBadRequest
	case errors.As(err, &ede):
		status = http.StatusConflict
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// writeJSON marshals v before writing the status; encode failures become 500.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("encode response")
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(b, '\n'))
}
