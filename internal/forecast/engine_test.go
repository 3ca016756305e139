package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

func series(values ...float64) dataset.TimeSeries {
	return dataset.NewIndexedSeries(origin, values)
}

func seasonalOffsets() []float64 {
	return []float64{-6, -4, -2, 0, 2, 4, 6, 4, 2, 0, -2, -4}
}

func seasonalRatios() []float64 {
	return []float64{0.8, 0.9, 1.0, 1.1, 1.2, 1.0, 0.8, 0.9, 1.0, 1.1, 1.2, 1.0}
}

func TestLinearForecastExtendsPerfectLine(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.Forecast(series(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), 3, stats.MethodLinear)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 3)
	for i, want := range []float64{11, 12, 13} {
		assert.InDelta(t, want, res.Predictions[i], 1e-9)
		assert.InDelta(t, want, res.Lower[i], 1e-6)
		assert.InDelta(t, want, res.Upper[i], 1e-6)
	}
	assert.InDelta(t, 0, res.MAE, 1e-9)
	assert.InDelta(t, 0, res.MAPE, 1e-9)
	assert.InDelta(t, 1, res.Parameters["slope"], 1e-9)
	assert.False(t, res.ID.IsEmpty())

	require.Len(t, res.Timestamps, 3)
	assert.Equal(t, origin.AddDate(0, 0, 10), res.Timestamps[0])
}

func TestEveryMethodReturnsHorizonPredictions(t *testing.T) {
	values := make([]float64, 36)
	for i := range values {
		values[i] = 100 + float64(i) + seasonalOffsets()[i%12]
	}
	ts := series(values...)
	e := NewEngine(DefaultConfig())

	for _, method := range stats.ForecastMethods {
		res, err := e.Forecast(ts, 6, method)
		require.NoError(t, err, "method %s", method)
		assert.Equal(t, method, res.Method)
		assert.Len(t, res.Predictions, 6)
		assert.Len(t, res.Lower, 6)
		assert.Len(t, res.Upper, 6)
		assert.Len(t, res.Timestamps, 6)
		assert.NotEmpty(t, res.Description)
		for i, p := range res.Predictions {
			assert.False(t, math.IsNaN(p))
			assert.LessOrEqual(t, res.Lower[i], p)
			assert.GreaterOrEqual(t, res.Upper[i], p)
		}
	}
}

func TestMovingAverageOnConstantSeries(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.MovingAverage(series(42.5, 42.5, 42.5, 42.5, 42.5, 42.5), 4, 3)
	require.NoError(t, err)

	for _, p := range res.Predictions {
		assert.InDelta(t, 42.5, p, 1e-9)
	}
	assert.InDelta(t, 0, res.MAE, 1e-9)
	assert.InDelta(t, 0, res.RMSE, 1e-9)
}

func TestMovingAverageRollsPredictionsForward(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.MovingAverage(series(1, 2, 3, 4, 5, 6), 2, 3)
	require.NoError(t, err)

	// (4+5+6)/3 = 5, then (5+6+5)/3
	assert.InDelta(t, 5, res.Predictions[0], 1e-9)
	assert.InDelta(t, 16.0/3, res.Predictions[1], 1e-9)
	// trailing means 2,3,4 against actuals 4,5,6
	assert.InDelta(t, 2, res.MAE, 1e-9)
}

func TestMovingAverageClampsWindow(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.MovingAverage(series(3, 6, 9), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Parameters["window"])
	assert.InDelta(t, 7.5, res.Predictions[0], 1e-9)

	res, err = e.MovingAverage(series(3, 6, 9), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Parameters["window"])
	assert.InDelta(t, 9, res.Predictions[0], 1e-9)
}

func TestExponentialSmoothing(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.ExponentialSmoothing(series(10, 20, 30), 3, 0.5)
	require.NoError(t, err)

	for _, p := range res.Predictions {
		assert.InDelta(t, 22.5, p, 1e-9)
	}
	assert.InDelta(t, 12.5, res.MAE, 1e-9)
	assert.Equal(t, 0.5, res.Parameters["alpha"])
}

func TestHoltWintersAdditiveRecoversSeason(t *testing.T) {
	offsets := seasonalOffsets()
	values := make([]float64, 36)
	for i := range values {
		values[i] = 50 + offsets[i%12]
	}
	e := NewEngine(DefaultConfig())
	res, err := e.HoltWinters(series(values...), 12, DefaultHoltWintersParams())
	require.NoError(t, err)

	for h, p := range res.Predictions {
		assert.InDelta(t, 50+offsets[h], p, 1e-6, "step %d", h+1)
	}
	assert.InDelta(t, 0, res.MAE, 1e-6)
	assert.Equal(t, 0.0, res.Parameters["multiplicative"])
}

func TestHoltWintersMultiplicative(t *testing.T) {
	ratios := seasonalRatios()
	values := make([]float64, 36)
	for i := range values {
		values[i] = 50 * ratios[i%12]
	}
	params := DefaultHoltWintersParams()
	params.Seasonality = SeasonalityMultiplicative

	e := NewEngine(DefaultConfig())
	res, err := e.HoltWinters(series(values...), 12, params)
	require.NoError(t, err)

	for h, p := range res.Predictions {
		assert.InDelta(t, 50*ratios[h], p, 1e-6, "step %d", h+1)
	}
	assert.Equal(t, 1.0, res.Parameters["multiplicative"])

	values[5] = 0
	res, err = e.HoltWinters(series(values...), 3, params)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Parameters["multiplicative"], "non-positive data falls back to additive")
}

func TestHoltWintersNeedsTwoSeasons(t *testing.T) {
	values := make([]float64, 23)
	for i := range values {
		values[i] = float64(i)
	}
	e := NewEngine(DefaultConfig())
	_, err := e.Forecast(series(values...), 3, stats.MethodHoltWinters)
	require.Error(t, err)
	assert.True(t, core.IsInsufficientData(err))

	var insufficient *core.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 24, insufficient.Required)
	assert.Equal(t, 23, insufficient.Got)
}

func TestForecastErrors(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for _, method := range stats.ForecastMethods {
		_, err := e.Forecast(series(1, 2), 3, method)
		assert.ErrorIs(t, err, core.ErrInsufficientData, "method %s", method)
	}

	_, err := e.Forecast(series(1, 2, 3, 4), 0, stats.MethodLinear)
	assert.ErrorIs(t, err, core.ErrInvalidHorizon)

	_, err = e.Forecast(series(1, 2, 3, 4), 2, stats.ForecastMethod("arima"))
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
	assert.True(t, core.IsInvalidRequest(err))

	_, err = e.Forecast(series(1, math.NaN(), 3), 2, stats.MethodLinear)
	assert.ErrorIs(t, err, core.ErrInsufficientData, "non-finite values are not usable points")
}

func TestForecastAllSkipsHoltWintersOnShortSeries(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cmp, err := e.ForecastAll(context.Background(), series(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), 3)
	require.NoError(t, err)

	require.Len(t, cmp.Results, 3)
	assert.Equal(t, stats.MethodLinear, cmp.Results[0].Method)
	assert.Equal(t, stats.MethodMovingAverage, cmp.Results[1].Method)
	assert.Equal(t, stats.MethodExponentialSmoothing, cmp.Results[2].Method)
	assert.Contains(t, cmp.Skipped, stats.MethodHoltWinters)
	assert.Equal(t, stats.MethodLinear, cmp.Best)
	assert.Equal(t, 3, cmp.Horizon)

	best, ok := cmp.BestResult()
	require.True(t, ok)
	assert.InDelta(t, 11, best.Predictions[0], 1e-9)
}

func TestForecastAllRunsEveryMethodOnLongSeries(t *testing.T) {
	offsets := seasonalOffsets()
	values := make([]float64, 48)
	for i := range values {
		values[i] = 50 + offsets[i%12]
	}
	e := NewEngine(DefaultConfig())
	cmp, err := e.ForecastAll(context.Background(), series(values...), 12)
	require.NoError(t, err)

	assert.Len(t, cmp.Results, 4)
	assert.Empty(t, cmp.Skipped)
	assert.Equal(t, stats.MethodHoltWinters, cmp.Best)
}

func TestForecastAllErrors(t *testing.T) {
	e := NewEngine(DefaultConfig())

	_, err := e.ForecastAll(context.Background(), series(1, 2), 3)
	assert.True(t, core.IsInsufficientData(err))

	_, err = e.ForecastAll(context.Background(), series(1, 2, 3), 0)
	assert.ErrorIs(t, err, core.ErrInvalidHorizon)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.ForecastAll(ctx, series(1, 2, 3, 4), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineReplacesInvalidParameters(t *testing.T) {
	e := NewEngine(Config{SmoothingAlpha: 1.5, Confidence: 2})
	cfg := e.Config()
	assert.Equal(t, 3, cfg.MovingAverageWindow)
	assert.Equal(t, 0.3, cfg.SmoothingAlpha)
	assert.Equal(t, 0.95, cfg.Confidence)
	assert.Equal(t, 12, cfg.HoltWinters.Period)
	assert.Equal(t, SeasonalityAdditive, cfg.HoltWinters.Seasonality)
}
