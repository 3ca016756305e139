package app

import (
	"context"
	"fmt"
	"time"

	"github.com/StephenStolk/analyseX-sub001/adapters/stats/engine"
	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis/brief"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/forecast"
	"github.com/StephenStolk/analyseX-sub001/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ServiceConfig collects the engine settings used by a full analysis
type ServiceConfig struct {
	Stats            engine.Config
	Forecast         forecast.Config
	Trend            analysis.TrendOptions
	AnomalyThreshold float64
	Horizon          int
	Cluster          analysis.ClusterOptions
	RegressionPairs  int   // strong or moderate pairs fitted with a regression
	MaxGroupLevels   int   // categorical columns with more levels are not group tested
	MaxConcurrent    int64 // analyses running at once
}

// DefaultServiceConfig returns the product defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Stats:            engine.DefaultConfig(),
		Forecast:         forecast.DefaultConfig(),
		Trend:            analysis.DefaultTrendOptions(),
		AnomalyThreshold: analysis.DefaultAnomalyThreshold,
		Horizon:          6,
		Cluster:          analysis.DefaultClusterOptions(),
		RegressionPairs:  3,
		MaxGroupLevels:   10,
		MaxConcurrent:    4,
	}
}

// AnalysisService runs every engine over a dataset and assembles the bundle
type AnalysisService struct {
	cfg        ServiceConfig
	stats      *engine.StatsEngine
	forecasts  *forecast.Engine
	summarizer ports.Summarizer
	reports    ports.ReportRepository
	sem        *semaphore.Weighted
	logger     *internal.Logger
}

// NewAnalysisService creates the service. summarizer and reports may be nil.
func NewAnalysisService(cfg ServiceConfig, summarizer ports.Summarizer, reports ports.ReportRepository) *AnalysisService {
	if cfg.Horizon < 1 {
		cfg.Horizon = DefaultServiceConfig().Horizon
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultServiceConfig().MaxConcurrent
	}
	if cfg.AnomalyThreshold <= 0 {
		cfg.AnomalyThreshold = analysis.DefaultAnomalyThreshold
	}
	if cfg.MaxGroupLevels < 2 {
		cfg.MaxGroupLevels = DefaultServiceConfig().MaxGroupLevels
	}
	return &AnalysisService{
		cfg:        cfg,
		stats:      engine.NewStatsEngine(cfg.Stats),
		forecasts:  forecast.NewEngine(cfg.Forecast),
		summarizer: summarizer,
		reports:    reports,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:     internal.DefaultLogger.WithField("component", "analysis_service"),
	}
}

// AnalyzeOptions selects what a full analysis covers
type AnalyzeOptions struct {
	Name        string   `json:"name,omitempty"`
	Columns     []string `json:"columns,omitempty"`      // correlation columns; empty uses every numeric column
	TimeColumn  string   `json:"time_column,omitempty"`  // empty uses the first temporal column, then row order
	ValueColumn string   `json:"value_column,omitempty"` // empty uses the first numeric column
	Horizon     int      `json:"horizon,omitempty"`
	Narrate     bool     `json:"narrate,omitempty"`
	Save        bool     `json:"save,omitempty"`
}

// AnalysisResult is the bundle with its optional narrative and stored report ID
type AnalysisResult struct {
	Bundle    *stats.Bundle `json:"bundle"`
	Narrative string        `json:"narrative,omitempty"`
	ReportID  core.ID       `json:"report_id,omitempty"`
}

// Analyze computes the summary, quality, correlations, regressions, per-column trends
// and anomalies, a forecast comparison, a row segmentation, group comparisons and the
// drivers of the last numeric column. Data too thin for the forecast, the segmentation
// or the drivers becomes a warning rather than an error.
func (s *AnalysisService) Analyze(ctx context.Context, ds *dataset.Dataset, opts AnalyzeOptions) (*AnalysisResult, error) {
	if ds == nil || ds.IsEmpty() {
		return nil, errors.Wrap(core.NewInsufficientDataError("analyze", 1, 0), "dataset is empty")
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	start := time.Now()
	horizon := opts.Horizon
	if horizon == 0 {
		horizon = s.cfg.Horizon
	}

	bundle := &stats.Bundle{
		ID:        core.NewID(),
		Name:      opts.Name,
		CreatedAt: start.UTC(),
		Trends:    make(map[string]stats.TrendProfile),
		Anomalies: make(map[string]stats.AnomalyReport),
	}
	numeric := ds.NumericColumns()
	trends := make([]stats.TrendProfile, len(numeric))
	anomalies := make([]stats.AnomalyReport, len(numeric))

	var (
		forecastOf      string
		cmp             *stats.ForecastComparison
		forecastWarning string
		clusterWarning  string
		driversWarning  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle.Summary = Summarize(ds)
		bundle.Quality = analysis.ScoreQuality(ds)
		return nil
	})
	if len(numeric) >= 2 || len(opts.Columns) >= 2 {
		g.Go(func() error {
			m, err := s.stats.CorrelationMatrix(gctx, ds, opts.Columns)
			if err != nil {
				return errors.Wrap(err, "correlation matrix")
			}
			bundle.Correlations = m
			return nil
		})
	}
	for i, col := range numeric {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values, err := ds.NumericSeries(col)
			if err != nil {
				return errors.Wrapf(err, "series %s", col)
			}
			trends[i] = analysis.AnalyzeTrendWith(values, s.cfg.Trend)
			anomalies[i] = analysis.DetectAnomalies(values, s.cfg.AnomalyThreshold)
			return nil
		})
	}
	if valueCol, timeCol, ok := s.forecastColumns(ds, opts); ok {
		forecastOf = valueCol
		g.Go(func() error {
			ts, err := ds.TimeSeries(timeCol, valueCol)
			if err != nil {
				return errors.Wrapf(err, "time series %s", valueCol)
			}
			result, err := s.forecasts.ForecastAll(gctx, ts, horizon)
			if err != nil {
				if core.IsInsufficientData(err) {
					forecastWarning = fmt.Sprintf("forecast of %s skipped: %v", valueCol, err)
					return nil
				}
				return errors.Wrapf(err, "forecast %s", valueCol)
			}
			cmp = result
			return nil
		})
	}
	if len(numeric) >= 2 {
		g.Go(func() error {
			result, err := s.Clusters(ds, nil, 0)
			if err != nil {
				if core.IsInsufficientData(err) {
					clusterWarning = fmt.Sprintf("segmentation skipped: %v", err)
					return nil
				}
				return err
			}
			bundle.Clusters = result
			return nil
		})
		g.Go(func() error {
			model, err := s.Drivers(ds, "", nil)
			if err != nil {
				if core.IsInsufficientData(err) {
					driversWarning = fmt.Sprintf("driver analysis skipped: %v", err)
					return nil
				}
				return err
			}
			bundle.Drivers = model
			return nil
		})
	}
	g.Go(func() error {
		bundle.GroupTests = s.groupTests(gctx, ds)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, col := range numeric {
		bundle.Trends[col] = trends[i]
		bundle.Anomalies[col] = anomalies[i]
	}
	if cmp != nil {
		bundle.Forecast = cmp
		bundle.ForecastOf = forecastOf
		for _, method := range stats.ForecastMethods {
			if reason, ok := cmp.Skipped[method]; ok {
				bundle.Warnings = append(bundle.Warnings, fmt.Sprintf("%s skipped: %s", method, reason))
			}
		}
	}
	for _, warning := range []string{forecastWarning, clusterWarning, driversWarning} {
		if warning != "" {
			bundle.Warnings = append(bundle.Warnings, warning)
		}
	}
	if len(numeric) == 0 {
		bundle.Warnings = append(bundle.Warnings, "no numeric columns found")
	}

	regressions, err := s.fitTopPairs(ds, bundle.Correlations)
	if err != nil {
		return nil, err
	}
	bundle.Regressions = regressions

	result := &AnalysisResult{Bundle: bundle}
	if opts.Narrate && s.summarizer != nil {
		narrative, err := s.summarizer.Summarize(ctx, bundle)
		if err != nil {
			s.logger.Warn("narrative failed for %s: %v", bundle.ID, err)
			bundle.Warnings = append(bundle.Warnings, "narrative unavailable")
		}
		result.Narrative = narrative
	}

	if opts.Save && s.reports != nil {
		report := &ports.StoredReport{
			ID:        bundle.ID,
			Name:      bundle.Name,
			Bundle:    bundle,
			Narrative: result.Narrative,
			CreatedAt: bundle.CreatedAt,
		}
		if err := s.reports.Save(ctx, report); err != nil {
			return nil, errors.DatabaseError("failed to save report", err)
		}
		result.ReportID = report.ID
	}

	s.logger.WithFields(map[string]interface{}{
		"bundle":   bundle.ID,
		"rows":     ds.RowCount(),
		"columns":  ds.ColumnCount(),
		"warnings": len(bundle.Warnings),
	}).Info("analysis finished in %s", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// forecastColumns picks the value and time columns for the bundle forecast
func (s *AnalysisService) forecastColumns(ds *dataset.Dataset, opts AnalyzeOptions) (value, timeCol string, ok bool) {
	value = opts.ValueColumn
	if value == "" {
		numeric := ds.NumericColumns()
		if len(numeric) == 0 {
			return "", "", false
		}
		value = numeric[0]
	}
	timeCol = opts.TimeColumn
	if timeCol == "" {
		if temporal := ds.TemporalColumns(); len(temporal) > 0 {
			timeCol = temporal[0]
		}
	}
	return value, timeCol, true
}

// fitTopPairs regresses the second column of each strong or moderate pair on the first
func (s *AnalysisService) fitTopPairs(ds *dataset.Dataset, m *stats.CorrelationMatrix) ([]stats.RegressionModel, error) {
	if m == nil {
		return nil, nil
	}
	var models []stats.RegressionModel
	for _, pair := range m.StrongPairs {
		if len(models) >= s.cfg.RegressionPairs {
			break
		}
		if pair.Strength == stats.StrengthWeak {
			continue
		}
		model, err := s.stats.FitColumns(ds, pair.ColumnA, pair.ColumnB)
		if err != nil {
			return nil, errors.Wrapf(err, "regress %s on %s", pair.ColumnB, pair.ColumnA)
		}
		models = append(models, model)
	}
	return models, nil
}

// groupTests compares every numeric column across the levels of each categorical column
// with at most MaxGroupLevels levels. Pairs without two usable groups are left out.
func (s *AnalysisService) groupTests(ctx context.Context, ds *dataset.Dataset) []stats.GroupTest {
	var tests []stats.GroupTest
	for _, by := range ds.CategoricalColumns() {
		profile, err := ds.Profile(by)
		if err != nil || profile.Distinct > s.cfg.MaxGroupLevels {
			continue
		}
		for _, col := range ds.NumericColumns() {
			if ctx.Err() != nil {
				return tests
			}
			test, err := s.GroupTest(ds, by, col, nil)
			if err != nil {
				continue
			}
			tests = append(tests, test)
		}
	}
	return tests
}

// Summarize builds the dataset overview: shape, column kinds, missing cells per column
// and descriptive statistics for every numeric column
func Summarize(ds *dataset.Dataset) stats.DatasetSummary {
	quality := analysis.ScoreQuality(ds)
	summary := stats.DatasetSummary{
		Rows:               ds.RowCount(),
		Columns:            ds.ColumnCount(),
		NumericColumns:     nonNil(ds.NumericColumns()),
		CategoricalColumns: nonNil(ds.CategoricalColumns()),
		TemporalColumns:    nonNil(ds.TemporalColumns()),
		Schema:             ds.Schema(),
		MissingValues:      quality.MissingByColumn,
		BasicStats:         make(map[string]stats.DescriptiveStats),
	}
	for _, col := range summary.NumericColumns {
		values, err := ds.NumericSeries(col)
		if err != nil {
			continue
		}
		summary.BasicStats[col] = brief.Compute(values)
	}
	return summary
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func parseID(s string) (core.ID, error) {
	id, err := core.ParseID(s)
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return id, nil
}
