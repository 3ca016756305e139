package app

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	domain "github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/testkit"
	"github.com/StephenStolk/analyseX-sub001/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, bundle *stats.Bundle) (string, error) {
	args := m.Called(ctx, bundle)
	return args.String(0), args.Error(1)
}

type mockReports struct {
	mock.Mock
}

func (m *mockReports) Save(ctx context.Context, report *ports.StoredReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *mockReports) Get(ctx context.Context, id core.ID) (*ports.StoredReport, error) {
	args := m.Called(ctx, id)
	if report, ok := args.Get(0).(*ports.StoredReport); ok {
		return report, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReports) List(ctx context.Context, limit, offset int) ([]ports.ReportSummary, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]ports.ReportSummary), args.Error(1)
}

func (m *mockReports) Delete(ctx context.Context, id core.ID) error {
	return m.Called(ctx, id).Error(0)
}

func TestAnalyzeSalesDataset(t *testing.T) {
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)
	ds := testkit.SalesDataset()

	result, err := svc.Analyze(context.Background(), ds, AnalyzeOptions{Name: "sales"})
	require.NoError(t, err)
	b := result.Bundle

	assert.False(t, b.ID.IsEmpty())
	assert.Equal(t, "sales", b.Name)
	assert.Equal(t, 36, b.Summary.Rows)
	assert.Equal(t, 5, b.Summary.Columns)
	assert.Equal(t, 100.0, b.Quality.Completeness)
	assert.Empty(t, b.Warnings)

	require.NotNil(t, b.Correlations)
	assert.Equal(t, []string{"revenue", "marketing_spend", "returns"}, b.Correlations.Labels)
	top := b.Correlations.StrongPairs[0]
	assert.Equal(t, "revenue", top.ColumnA)
	assert.Equal(t, "marketing_spend", top.ColumnB)
	assert.Equal(t, stats.StrengthStrong, top.Strength)

	require.NotEmpty(t, b.Regressions)
	assert.Equal(t, "revenue", b.Regressions[0].Predictor)
	assert.InDelta(t, 0.1, b.Regressions[0].Slope, 0.02)

	assert.Len(t, b.Trends, 3)
	assert.Equal(t, stats.TrendUpward, b.Trends["revenue"].Direction)
	assert.Len(t, b.Anomalies, 3)

	require.NotNil(t, b.Forecast)
	assert.Equal(t, "revenue", b.ForecastOf)
	assert.Equal(t, 6, b.Forecast.Horizon)
	assert.Len(t, b.Forecast.Results, len(stats.ForecastMethods))
	best, ok := b.Forecast.BestResult()
	require.True(t, ok)
	assert.Len(t, best.Predictions, 6)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), best.Timestamps[0])

	require.NotNil(t, b.Clusters)
	assert.Equal(t, []string{"revenue", "marketing_spend", "returns"}, b.Clusters.Features)
	assert.Len(t, b.Clusters.Assignments, 36)
	assert.GreaterOrEqual(t, b.Clusters.K, 2)

	require.NotNil(t, b.Drivers)
	assert.Equal(t, "returns", b.Drivers.Target)
	assert.Len(t, b.Drivers.Features, 2)

	require.Len(t, b.GroupTests, 3)
	for _, test := range b.GroupTests {
		assert.Equal(t, "region", test.GroupBy)
		assert.Equal(t, stats.TestOneWayANOVA, test.Kind)
		assert.Len(t, test.Groups, 4)
	}
}

func TestAnalyzeShortSeriesWarns(t *testing.T) {
	ds := dataset.New([]domain.Row{{"x": 1.0, "y": 2.0}, {"x": 2.0, "y": 4.0}})
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), ds, AnalyzeOptions{})
	require.NoError(t, err)
	b := result.Bundle

	assert.Nil(t, b.Forecast)
	require.Len(t, b.Warnings, 3)
	assert.Contains(t, b.Warnings[0], "forecast of x skipped")
	assert.Contains(t, b.Warnings[1], "segmentation skipped")
	assert.Contains(t, b.Warnings[2], "driver analysis skipped")
	assert.Nil(t, b.Clusters)
	assert.Nil(t, b.Drivers)
	assert.Empty(t, b.GroupTests)
	require.NotNil(t, b.Correlations)
	assert.Empty(t, b.Correlations.Pairs)
	assert.Empty(t, b.Regressions)
}

func TestAnalyzeHoltWintersSkipIsWarned(t *testing.T) {
	cfg := testkit.DefaultSalesConfig()
	cfg.Months = 12
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), testkit.SalesDataset(cfg), AnalyzeOptions{ValueColumn: "returns", Horizon: 2})
	require.NoError(t, err)
	b := result.Bundle

	require.NotNil(t, b.Forecast)
	assert.Equal(t, "returns", b.ForecastOf)
	assert.Len(t, b.Forecast.Results, 3)
	require.Len(t, b.Warnings, 1)
	assert.Contains(t, b.Warnings[0], "holtWinters skipped")
}

func TestAnalyzeEmptyDataset(t *testing.T) {
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)
	_, err := svc.Analyze(context.Background(), dataset.New(nil), AnalyzeOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
	assert.True(t, core.IsInsufficientData(err))
}

func TestAnalyzeNarratesAndSaves(t *testing.T) {
	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, mock.AnythingOfType("*stats.Bundle")).Return("Revenue grows.", nil)
	reports := &mockReports{}
	reports.On("Save", mock.Anything, mock.MatchedBy(func(r *ports.StoredReport) bool {
		return r.Narrative == "Revenue grows." && r.Bundle != nil && r.Name == "sales"
	})).Return(nil)

	svc := NewAnalysisService(DefaultServiceConfig(), summarizer, reports)
	result, err := svc.Analyze(context.Background(), testkit.SalesDataset(), AnalyzeOptions{Name: "sales", Narrate: true, Save: true})
	require.NoError(t, err)

	assert.Equal(t, "Revenue grows.", result.Narrative)
	assert.Equal(t, result.Bundle.ID, result.ReportID)
	summarizer.AssertExpectations(t)
	reports.AssertExpectations(t)
}

func TestAnalyzeNarrativeFailureIsAWarning(t *testing.T) {
	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, mock.Anything).Return("", stderrors.New("model down"))

	svc := NewAnalysisService(DefaultServiceConfig(), summarizer, nil)
	result, err := svc.Analyze(context.Background(), testkit.SalesDataset(), AnalyzeOptions{Narrate: true})
	require.NoError(t, err)
	assert.Empty(t, result.Narrative)
	assert.Contains(t, result.Bundle.Warnings, "narrative unavailable")
}

func TestAnalyzeSaveFailure(t *testing.T) {
	reports := &mockReports{}
	reports.On("Save", mock.Anything, mock.Anything).Return(stderrors.New("connection refused"))

	svc := NewAnalysisService(DefaultServiceConfig(), nil, reports)
	_, err := svc.Analyze(context.Background(), testkit.SalesDataset(), AnalyzeOptions{Save: true})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestAnalyzeWaitsForCapacity(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.MaxConcurrent = 1
	svc := NewAnalysisService(cfg, nil, nil)
	require.NoError(t, svc.sem.Acquire(context.Background(), 1))
	defer svc.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Analyze(ctx, testkit.SalesDataset(), AnalyzeOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSummarize(t *testing.T) {
	ds := dataset.New([]domain.Row{
		{"price": 10.0, "city": "a"},
		{"price": 20.0, "city": "a"},
		{"price": "", "city": "b"},
		{"price": 30.0, "city": "a"},
	})
	summary := Summarize(ds)

	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 2, summary.Columns)
	assert.Equal(t, []string{"price"}, summary.NumericColumns)
	assert.Equal(t, []string{"city"}, summary.CategoricalColumns)
	assert.Equal(t, []string{}, summary.TemporalColumns)
	assert.Equal(t, map[string]int{"price": 1, "city": 0}, summary.MissingValues)
	assert.Equal(t, 3, summary.BasicStats["price"].Count)
	assert.Equal(t, 20.0, summary.BasicStats["price"].Mean)
}
