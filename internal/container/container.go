// Package container wires configuration, storage, summarizers and the analysis
// service for the binaries.
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/StephenStolk/analyseX-sub001/adapters/db/postgres/migrations"
	"github.com/StephenStolk/analyseX-sub001/adapters/llm"
	"github.com/StephenStolk/analyseX-sub001/adapters/llm/heuristic"
	"github.com/StephenStolk/analyseX-sub001/adapters/postgres"
	"github.com/StephenStolk/analyseX-sub001/app"
	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis"
	"github.com/StephenStolk/analyseX-sub001/internal/api"
	"github.com/StephenStolk/analyseX-sub001/internal/config"
	"github.com/StephenStolk/analyseX-sub001/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure, nil without database.url
	DB *sqlx.DB

	Reports    ports.ReportRepository
	Summarizer ports.Summarizer
	Service    *app.AnalysisService

	logger *internal.Logger
}

// New creates the container. The database is opened only when a URL is configured;
// an AI key selects the LLM summarizer, otherwise the template one is used.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	c := &Container{
		Config: cfg,
		logger: internal.DefaultLogger.WithField("component", "container"),
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Reports = postgres.NewReportRepository(db)
		c.logger.Info("report store enabled")
	}

	summarizer, err := newSummarizer(cfg.AI)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Summarizer = summarizer

	c.Service = app.NewAnalysisService(ServiceConfig(cfg), c.Summarizer, c.Reports)
	return c, nil
}

func newSummarizer(ai config.AIConfig) (ports.Summarizer, error) {
	if !ai.Enabled() {
		return heuristic.NewSummarizer(), nil
	}
	s, err := llm.NewSummarizer(llm.Config{
		Model:       ai.Model,
		APIKey:      ai.APIKey,
		BaseURL:     ai.BaseURL,
		Temperature: ai.Temperature,
		MaxTokens:   ai.MaxTokens,
		Timeout:     ai.Timeout,
	}, heuristic.NewSummarizer())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	return s, nil
}

// ServiceConfig maps the engine settings onto the analysis service
func ServiceConfig(cfg *config.Config) app.ServiceConfig {
	trend := analysis.DefaultTrendOptions()
	trend.SeasonPeriod = cfg.Engine.SeasonalPeriod

	sc := app.DefaultServiceConfig()
	sc.Stats = cfg.Engine.StatsConfig()
	sc.Forecast = cfg.Engine.ForecastConfig()
	sc.Trend = trend
	sc.AnomalyThreshold = cfg.Engine.AnomalyThreshold
	sc.Horizon = cfg.Engine.ForecastHorizon
	sc.MaxConcurrent = cfg.Engine.MaxConcurrentAnalyses
	sc.Cluster.MaxK = cfg.Engine.MaxClusters
	sc.MaxGroupLevels = cfg.Engine.MaxGroupLevels
	return sc
}

// Server builds the HTTP handler over the service
func (c *Container) Server() *api.Server {
	apiCfg := api.DefaultConfig()
	apiCfg.MaxUploadBytes = c.Config.Server.MaxUploadMB << 20
	apiCfg.Dataset = c.Config.Engine.DatasetOptions()
	return api.NewServer(c.Service, apiCfg)
}

// Serve runs the HTTP server until ctx is cancelled, then drains it within the shutdown timeout
func (c *Container) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", c.Config.Server.Port),
		Handler:      c.Server(),
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Migrate applies pending schema migrations; it is a no-op without a database
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	if c.DB == nil {
		return nil, nil
	}
	applied, err := migrations.NewMigrator(c.DB).Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, name := range applied {
		c.logger.Info("applied migration %s", name)
	}
	return applied, nil
}

// Close releases the database connection
func (c *Container) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.Warn("failed to close database: %v", err)
		}
	}
}
