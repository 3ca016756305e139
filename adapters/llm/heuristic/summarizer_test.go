package heuristic

import (
	"context"
	"math"
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBundle() *stats.Bundle {
	return &stats.Bundle{
		Summary: stats.DatasetSummary{
			Rows: 24, Columns: 3,
			NumericColumns:  []string{"revenue", "cost"},
			TemporalColumns: []string{"month"},
		},
		Quality: stats.QualityReport{Completeness: 97.5},
		Correlations: &stats.CorrelationMatrix{
			StrongPairs: []stats.CorrelationPair{
				{ColumnA: "revenue", ColumnB: "cost", Coefficient: -0.8456, Strength: stats.StrengthStrong, SampleSize: 24},
			},
		},
		Trends: map[string]stats.TrendProfile{
			"revenue": {Direction: stats.TrendUpward, Strength: 12.34},
			"cost":    {Direction: stats.TrendStable},
		},
		Anomalies: map[string]stats.AnomalyReport{
			"revenue": {Percentage: 4.1667, Anomalies: []stats.AnomalyRecord{{Index: 3, Severity: stats.SeverityHigh}}},
			"cost":    {},
		},
		ForecastOf: "revenue",
		Forecast: &stats.ForecastComparison{
			Horizon: 3,
			Best:    stats.MethodLinear,
			Results: []stats.ForecastResult{{
				Method:      stats.MethodLinear,
				Predictions: []float64{10, 11, 12.345},
				Lower:       []float64{9, 10, 11.004},
				Upper:       []float64{11, 12, 13.686},
				MAPE:        2.25,
			}},
		},
		Warnings: []string{"holtWinters skipped"},
	}
}

func TestSummarizeMentionsEverySection(t *testing.T) {
	text, err := NewSummarizer().Summarize(context.Background(), sampleBundle())
	require.NoError(t, err)

	assert.Contains(t, text, "24 rows and 3 columns (2 numeric, 0 categorical, 1 temporal)")
	assert.Contains(t, text, "completeness is 97.5%")
	assert.Contains(t, text, "revenue and cost: strong negative correlation (r = -0.85, n = 24)")
	assert.Contains(t, text, "revenue is trending upward (12.3% change between halves)")
	assert.Contains(t, text, "cost is stable")
	assert.Contains(t, text, "revenue: 1 unusual values (4.2% of observations, 1 high severity)")
	assert.NotContains(t, text, "cost: 0 unusual")
	assert.Contains(t, text, "projects 12.35 after 3 periods, with a likely range of 11 to 13.69")
	assert.Contains(t, text, "> Note: holtWinters skipped")
}

func TestSummarizeKeyFindings(t *testing.T) {
	bundle := sampleBundle()
	bundle.Drivers = &stats.MultipleRegression{
		Target: "revenue", TopDriver: "cost", RSquared: 0.876,
		Features: []stats.FeatureImportance{{Feature: "cost", Importance: 0.6}},
	}
	bundle.Clusters = &stats.ClusterAnalysis{K: 3, Features: []string{"revenue", "cost"}}
	bundle.GroupTests = []stats.GroupTest{
		{Column: "revenue", GroupBy: "region", PValue: 0.0123, Significant: true},
		{Column: "cost", GroupBy: "region", PValue: 0.4},
	}

	text, err := NewSummarizer().Summarize(context.Background(), bundle)
	require.NoError(t, err)
	assert.Contains(t, text, "## Key findings")
	assert.Contains(t, text, "cost is the strongest driver of revenue (60% of the explained effect, R² 0.88)")
	assert.Contains(t, text, "The rows fall into 3 segments over revenue, cost")
	assert.Contains(t, text, "revenue differs across region (p = 0.012)")
	assert.NotContains(t, text, "cost differs")
}

func TestSummarizeIsDeterministic(t *testing.T) {
	s := NewSummarizer()
	first, err := s.Summarize(context.Background(), sampleBundle())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Summarize(context.Background(), sampleBundle())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSummarizeMinimalBundle(t *testing.T) {
	text, err := NewSummarizer().Summarize(context.Background(), &stats.Bundle{})
	require.NoError(t, err)
	assert.NotContains(t, text, "##")

	_, err = NewSummarizer().Summarize(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSummarizer().Summarize(ctx, sampleBundle())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2.68", FormatNumber(2.675, 2))
	assert.Equal(t, "-0.85", FormatNumber(-0.8456, 2))
	assert.Equal(t, "3", FormatNumber(3.0, 2))
	assert.Equal(t, "n/a", FormatNumber(math.NaN(), 2))
	assert.Equal(t, "n/a", FormatNumber(math.Inf(1), 2))
	assert.Equal(t, "100%", FormatPercent(100))
}
