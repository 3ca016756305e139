// Package api exposes the analysis engines over HTTP.
//
// Every analysis endpoint accepts either a multipart upload (field "file", CSV or
// XLSX, parameters as form values) or a JSON body carrying the rows inline.
package api

import (
	"net/http"
	"time"

	"github.com/StephenStolk/analyseX-sub001/adapters/excel"
	"github.com/StephenStolk/analyseX-sub001/app"
	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds HTTP layer settings
type Config struct {
	MaxUploadBytes int64
	Dataset        dataset.Options
	Reader         excel.ReaderConfig
}

// DefaultConfig allows 20MB uploads with the default schema inference
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes: 20 << 20,
		Dataset:        dataset.DefaultOptions(),
		Reader:         excel.DefaultReaderConfig(),
	}
}

// Server routes requests to the analysis service
type Server struct {
	router  *chi.Mux
	service *app.AnalysisService
	config  Config
	logger  *internal.Logger
}

// NewServer creates the router with middleware and routes installed
func NewServer(service *app.AnalysisService, config Config) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		config:  config,
		logger:  internal.DefaultLogger.WithField("component", "http"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/summary", s.handleSummary)
		r.Post("/descriptive", s.handleDescriptive)
		r.Post("/correlations", s.handleCorrelations)
		r.Post("/regression", s.handleRegression)
		r.Post("/forecast", s.handleForecast)
		r.Post("/anomalies", s.handleAnomalies)
		r.Post("/trend", s.handleTrend)
		r.Post("/quality", s.handleQuality)
		r.Post("/clusters", s.handleClusters)
		r.Post("/group-tests", s.handleGroupTest)
		r.Post("/drivers", s.handleDrivers)

		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/reports/{id}/html", s.handleGetReportHTML)
	})
}

// requestLogger logs one line per request through the application logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
		}).Debug("%s %s in %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}
