package analysis

import (
	"math"
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomaliesFlagsSpike(t *testing.T) {
	series := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		series = append(series, 10)
	}
	series = append(series, 100)

	report := DetectAnomalies(series, 0)
	require.Len(t, report.Anomalies, 1)

	a := report.Anomalies[0]
	assert.Equal(t, 19, a.Index)
	assert.Equal(t, 100.0, a.Value)
	assert.InDelta(t, 14.5, a.Expected, 1e-9)
	assert.Greater(t, a.Deviation, 4.0)
	assert.Equal(t, stats.SeverityHigh, a.Severity)
	assert.InDelta(t, 5.0, report.Percentage, 1e-9)
	assert.Equal(t, DefaultAnomalyThreshold, report.Threshold)
}

func TestDetectAnomaliesShortSeries(t *testing.T) {
	// With five points the largest attainable |z| is 2, so the spike needs a lower bar
	series := []float64{10, 10, 10, 10, 100}

	assert.Empty(t, DetectAnomalies(series, DefaultAnomalyThreshold).Anomalies)

	report := DetectAnomalies(series, 1.9)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 4, report.Anomalies[0].Index)
	assert.InDelta(t, 2.0, report.Anomalies[0].Deviation, 1e-9)
	assert.Equal(t, stats.SeverityMedium, report.Anomalies[0].Severity)
	assert.InDelta(t, 20.0, report.Percentage, 1e-9)
}

func TestDetectAnomaliesNegativeDeviation(t *testing.T) {
	series := []float64{50, 51, 49, 50, 52, 48, 50, 51, 49, 50, 50, 51, 49, 50, -40}
	report := DetectAnomalies(series, 2.5)
	require.Len(t, report.Anomalies, 1)
	assert.Less(t, report.Anomalies[0].Deviation, -2.5)
	assert.Equal(t, 14, report.Anomalies[0].Index)
}

func TestDetectAnomaliesDegenerateInput(t *testing.T) {
	empty := DetectAnomalies(nil, 2.5)
	assert.Empty(t, empty.Anomalies)
	assert.Zero(t, empty.Percentage)

	flat := DetectAnomalies([]float64{3, 3, 3, 3}, 2.5)
	assert.Empty(t, flat.Anomalies)
	assert.Zero(t, flat.Percentage)
	assert.InDelta(t, 3, flat.Mean, 1e-9)
}

func TestDetectAnomaliesKeepsOriginalIndices(t *testing.T) {
	series := []float64{math.NaN(), 10, 10, 10, 10, 100}
	report := DetectAnomalies(series, 1.9)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 5, report.Anomalies[0].Index)
}
