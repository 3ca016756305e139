package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/StephenStolk/analyseX-sub001/app"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/report"

	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Analyze(r.Context(), ds, app.AnalyzeOptions{
		Name:        req.Name,
		Columns:     req.CorrelationColumns,
		TimeColumn:  req.TimeColumn,
		ValueColumn: req.ValueColumn,
		Horizon:     req.Horizon,
		Narrate:     req.Narrate,
		Save:        req.Save,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(report.RenderHTML(result.Bundle, result.Narrative))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Summarize(ds))
}

func (s *Server) handleDescriptive(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil {
		err = req.require(map[string]string{"column": req.Column})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Descriptive(ds, req.Column)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Correlations(r.Context(), ds, req.CorrelationColumns)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil {
		err = req.require(map[string]string{"x": req.X, "y": req.Y})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Regression(ds, req.X, req.Y)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil {
		err = req.require(map[string]string{"value_column": req.ValueColumn})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Forecast(r.Context(), ds, req.TimeColumn, req.ValueColumn, req.Horizon, req.forecastMethod())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil {
		err = req.require(map[string]string{"column": req.Column})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Anomalies(ds, req.Column, req.Threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil {
		err = req.require(map[string]string{"column": req.Column})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Trend(ds, req.Column)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Clusters(ds, req.Features, req.K)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGroupTest(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err == nil && req.GroupBy != "" {
		err = req.require(map[string]string{"column": req.Column})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.GroupTest(ds, req.GroupBy, req.Column, req.Features)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	req, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Drivers(ds, req.Target, req.Features)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Quality(ds))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	list, err := s.service.Reports(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	bundle, narrative, err := s.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.AnalysisResult{Bundle: bundle, Narrative: narrative, ReportID: bundle.ID})
}

func (s *Server) handleGetReportHTML(w http.ResponseWriter, r *http.Request) {
	bundle, narrative, err := s.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.RenderHTML(bundle, narrative))
}
