package app

import (
	"context"

	domaindataset "github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis/brief"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/ports"
)

// Descriptive computes the statistics of one numeric column
func (s *AnalysisService) Descriptive(ds *dataset.Dataset, column string) (stats.DescriptiveStats, error) {
	values, err := ds.NumericSeries(column)
	if err != nil {
		return stats.DescriptiveStats{}, errors.Wrapf(err, "descriptive stats for %s", column)
	}
	return brief.Compute(values), nil
}

// Correlations builds the correlation matrix over the given columns, or all numeric ones
func (s *AnalysisService) Correlations(ctx context.Context, ds *dataset.Dataset, columns []string) (*stats.CorrelationMatrix, error) {
	m, err := s.stats.CorrelationMatrix(ctx, ds, columns)
	if err != nil {
		return nil, errors.Wrap(err, "correlation matrix")
	}
	return m, nil
}

// Regression fits target on predictor over rows where both are numeric
func (s *AnalysisService) Regression(ds *dataset.Dataset, predictor, target string) (stats.RegressionModel, error) {
	model, err := s.stats.FitColumns(ds, predictor, target)
	if err != nil {
		return stats.RegressionModel{}, errors.Wrapf(err, "regress %s on %s", target, predictor)
	}
	return model, nil
}

// Forecast runs one method, or compares all of them when method is empty
func (s *AnalysisService) Forecast(ctx context.Context, ds *dataset.Dataset, timeColumn, valueColumn string, horizon int, method stats.ForecastMethod) (*stats.ForecastComparison, error) {
	if horizon == 0 {
		horizon = s.cfg.Horizon
	}
	ts, err := ds.TimeSeries(timeColumn, valueColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "time series %s", valueColumn)
	}

	if method == "" {
		cmp, err := s.forecasts.ForecastAll(ctx, ts, horizon)
		if err != nil {
			return nil, errors.Wrapf(err, "forecast %s", valueColumn)
		}
		return cmp, nil
	}

	result, err := s.forecasts.Forecast(ts, horizon, method)
	if err != nil {
		return nil, errors.Wrapf(err, "%s forecast of %s", method, valueColumn)
	}
	return &stats.ForecastComparison{Horizon: horizon, Results: []stats.ForecastResult{*result}, Best: method}, nil
}

// Anomalies flags values of a column beyond the z-score threshold; zero uses the configured one
func (s *AnalysisService) Anomalies(ds *dataset.Dataset, column string, threshold float64) (stats.AnomalyReport, error) {
	values, err := ds.NumericSeries(column)
	if err != nil {
		return stats.AnomalyReport{}, errors.Wrapf(err, "anomalies in %s", column)
	}
	if threshold <= 0 {
		threshold = s.cfg.AnomalyThreshold
	}
	return analysis.DetectAnomalies(values, threshold), nil
}

// Trend classifies the movement of a column in row order
func (s *AnalysisService) Trend(ds *dataset.Dataset, column string) (stats.TrendProfile, error) {
	values, err := ds.NumericSeries(column)
	if err != nil {
		return stats.TrendProfile{}, errors.Wrapf(err, "trend of %s", column)
	}
	return analysis.AnalyzeTrendWith(values, s.cfg.Trend), nil
}

// Clusters segments the rows over the given columns, or every numeric column. A k of zero
// picks the cluster count with the elbow method.
func (s *AnalysisService) Clusters(ds *dataset.Dataset, columns []string, k int) (*stats.ClusterAnalysis, error) {
	if len(columns) == 0 {
		columns = ds.NumericColumns()
	}
	if k < 0 {
		return nil, errors.InvalidInput("cluster count must not be negative")
	}
	rows, err := ds.NumericMatrix(columns)
	if err != nil {
		return nil, errors.Wrap(err, "cluster rows")
	}
	opts := s.cfg.Cluster
	opts.K = k
	result, err := analysis.Cluster(columns, rows, opts)
	if err != nil {
		return nil, errors.Wrap(err, "cluster rows")
	}
	return result, nil
}

// GroupTest compares the means of column across the levels of groupBy. Without groupBy
// each of columns is treated as one group.
func (s *AnalysisService) GroupTest(ds *dataset.Dataset, groupBy, column string, columns []string) (stats.GroupTest, error) {
	var groups []domaindataset.Group
	if groupBy != "" {
		grouped, err := ds.GroupedSeries(groupBy, column)
		if err != nil {
			return stats.GroupTest{}, errors.Wrapf(err, "group %s by %s", column, groupBy)
		}
		groups = grouped
	} else {
		if len(columns) < 2 {
			return stats.GroupTest{}, errors.InvalidInput("group test needs group_by or at least two columns")
		}
		for _, col := range columns {
			values, err := ds.NumericSeries(col)
			if err != nil {
				return stats.GroupTest{}, errors.Wrapf(err, "group test of %s", col)
			}
			groups = append(groups, domaindataset.Group{Name: col, Values: values})
		}
	}

	test, err := analysis.CompareGroups(groups)
	if err != nil {
		return stats.GroupTest{}, errors.Wrap(err, "group test")
	}
	test.Column = column
	test.GroupBy = groupBy
	return test, nil
}

// Drivers regresses target on several features and ranks them by importance. Empty
// arguments use the last numeric column as target and the others as features.
func (s *AnalysisService) Drivers(ds *dataset.Dataset, target string, features []string) (*stats.MultipleRegression, error) {
	model, err := s.stats.FitDrivers(ds, target, features)
	if err != nil {
		return nil, errors.Wrap(err, "driver analysis")
	}
	return model, nil
}

// Quality scores dataset completeness
func (s *AnalysisService) Quality(ds *dataset.Dataset) stats.QualityReport {
	return analysis.ScoreQuality(ds)
}

// Report loads a stored report
func (s *AnalysisService) Report(ctx context.Context, id string) (*stats.Bundle, string, error) {
	if s.reports == nil {
		return nil, "", errors.NotFound("report store")
	}
	reportID, err := parseID(id)
	if err != nil {
		return nil, "", err
	}
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, "", errors.Wrapf(err, "load report %s", id)
	}
	return report.Bundle, report.Narrative, nil
}

// Reports lists stored reports, newest first
func (s *AnalysisService) Reports(ctx context.Context, limit, offset int) ([]ports.ReportSummary, error) {
	if s.reports == nil {
		return []ports.ReportSummary{}, nil
	}
	list, err := s.reports.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.DatabaseError("failed to list reports", err)
	}
	return list, nil
}
