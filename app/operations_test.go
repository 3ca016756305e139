package app

import (
	"context"
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/testkit"
	"github.com/StephenStolk/analyseX-sub001/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSingleOperations(t *testing.T) {
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)
	ds := testkit.SalesDataset()

	d, err := svc.Descriptive(ds, "returns")
	require.NoError(t, err)
	assert.Equal(t, 36, d.Count)

	m, err := svc.Correlations(context.Background(), ds, []string{"revenue", "marketing_spend"})
	require.NoError(t, err)
	require.Len(t, m.Pairs, 1)

	model, err := svc.Regression(ds, "revenue", "marketing_spend")
	require.NoError(t, err)
	assert.Greater(t, model.RSquared, 0.9)

	cmp, err := svc.Forecast(context.Background(), ds, "month", "revenue", 3, stats.MethodLinear)
	require.NoError(t, err)
	assert.Equal(t, stats.MethodLinear, cmp.Best)
	require.Len(t, cmp.Results, 1)
	assert.Len(t, cmp.Results[0].Predictions, 3)

	all, err := svc.Forecast(context.Background(), ds, "", "revenue", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 6, all.Horizon)

	report, err := svc.Anomalies(ds, "revenue", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, report.Threshold)

	trend, err := svc.Trend(ds, "revenue")
	require.NoError(t, err)
	assert.Equal(t, stats.TrendUpward, trend.Direction)

	assert.Equal(t, 100.0, svc.Quality(ds).Completeness)
}

func TestSegmentationAndDriverOperations(t *testing.T) {
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)
	ds := testkit.SalesDataset()

	clusters, err := svc.Clusters(ds, []string{"revenue", "returns"}, 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, clusters.K, 3)
	assert.Equal(t, 36, clusters.SampleSize)

	byRegion, err := svc.GroupTest(ds, "region", "revenue", nil)
	require.NoError(t, err)
	assert.Equal(t, stats.TestOneWayANOVA, byRegion.Kind)
	assert.Equal(t, "revenue", byRegion.Column)
	assert.NotEmpty(t, byRegion.Interpretation)

	columns, err := svc.GroupTest(ds, "", "", []string{"revenue", "returns"})
	require.NoError(t, err)
	assert.Equal(t, stats.TestIndependentT, columns.Kind)
	assert.True(t, columns.Significant, "revenue is far above returns")

	drivers, err := svc.Drivers(ds, "revenue", []string{"marketing_spend", "returns"})
	require.NoError(t, err)
	assert.Equal(t, "marketing_spend", drivers.TopDriver)
	assert.Greater(t, drivers.RSquared, 0.9)

	_, err = svc.GroupTest(ds, "", "", []string{"revenue"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Clusters(ds, []string{"revenue"}, 0)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))

	_, err = svc.Clusters(ds, nil, -1)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.GroupTest(ds, "segment", "revenue", nil)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestOperationErrorsCarryCodes(t *testing.T) {
	svc := NewAnalysisService(DefaultServiceConfig(), nil, nil)
	ds := testkit.SalesDataset()

	_, err := svc.Descriptive(ds, "missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.Forecast(context.Background(), ds, "", "revenue", 3, "arima")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Forecast(context.Background(), ds, "", "revenue", -1, "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, _, err = svc.Report(context.Background(), core.NewID().String())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReportLookup(t *testing.T) {
	id := core.NewID()
	reports := &mockReports{}
	reports.On("Get", mock.Anything, id).Return(&ports.StoredReport{ID: id, Bundle: &stats.Bundle{ID: id}, Narrative: "ok"}, nil)
	reports.On("List", mock.Anything, 10, 0).Return([]ports.ReportSummary{{ID: id}}, nil)
	svc := NewAnalysisService(DefaultServiceConfig(), nil, reports)

	bundle, narrative, err := svc.Report(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, id, bundle.ID)
	assert.Equal(t, "ok", narrative)

	_, _, err = svc.Report(context.Background(), "not-a-uuid")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	list, err := svc.Reports(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	reports.AssertExpectations(t)
}
