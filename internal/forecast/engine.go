// Package forecast projects a time series forward with one of four strategies and
// scores each strategy against the observed values.
//
// Every strategy is back-tested in-sample: the one-step-ahead value the model would
// have produced for each observed period is compared with the actual value, giving
// MAE, RMSE and MAPE. The 95% band around each prediction is ±z·RMSE.
package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis/brief"

	"golang.org/x/sync/errgroup"
)

// MinPoints is the shortest series any strategy accepts
const MinPoints = 3

// Config holds the default strategy parameters
type Config struct {
	MovingAverageWindow int               `json:"moving_average_window"`
	SmoothingAlpha      float64           `json:"smoothing_alpha"`
	HoltWinters         HoltWintersParams `json:"holt_winters"`
	Confidence          float64           `json:"confidence"` // prediction band coverage
}

// DefaultConfig returns window 3, alpha 0.3, a 12 period additive Holt-Winters and 95% bands
func DefaultConfig() Config {
	return Config{
		MovingAverageWindow: 3,
		SmoothingAlpha:      0.3,
		HoltWinters:         DefaultHoltWintersParams(),
		Confidence:          0.95,
	}
}

// Engine dispatches forecasts to the configured strategies
type Engine struct {
	cfg    Config
	logger *internal.Logger
}

// NewEngine creates an engine, replacing out-of-range parameters with defaults
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MovingAverageWindow <= 0 {
		cfg.MovingAverageWindow = def.MovingAverageWindow
	}
	if !validFactor(cfg.SmoothingAlpha) {
		cfg.SmoothingAlpha = def.SmoothingAlpha
	}
	cfg.HoltWinters = cfg.HoltWinters.withDefaults()
	if !validFactor(cfg.Confidence) {
		cfg.Confidence = def.Confidence
	}
	return &Engine{cfg: cfg, logger: internal.DefaultLogger.WithField("component", "forecast")}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Forecast runs one named strategy with the configured parameters
func (e *Engine) Forecast(ts dataset.TimeSeries, horizon int, method stats.ForecastMethod) (*stats.ForecastResult, error) {
	switch method {
	case stats.MethodLinear:
		return e.Linear(ts, horizon)
	case stats.MethodMovingAverage:
		return e.MovingAverage(ts, horizon, e.cfg.MovingAverageWindow)
	case stats.MethodExponentialSmoothing:
		return e.ExponentialSmoothing(ts, horizon, e.cfg.SmoothingAlpha)
	case stats.MethodHoltWinters:
		return e.HoltWinters(ts, horizon, e.cfg.HoltWinters)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownMethod, method)
	}
}

// ForecastAll runs every strategy concurrently. Holt-Winters is skipped, with the
// reason recorded, when the series is too short for it. The best method is the one
// with the lowest MAPE, ties going to the earlier method in stats.ForecastMethods.
func (e *Engine) ForecastAll(ctx context.Context, ts dataset.TimeSeries, horizon int) (*stats.ForecastComparison, error) {
	if _, err := prepare(ts, horizon, MinPoints, "forecast"); err != nil {
		return nil, err
	}

	results := make([]*stats.ForecastResult, len(stats.ForecastMethods))
	skipped := make([]error, len(stats.ForecastMethods))

	g, gctx := errgroup.WithContext(ctx)
	for i, method := range stats.ForecastMethods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Forecast(ts, horizon, method)
			if err != nil {
				if method == stats.MethodHoltWinters && core.IsInsufficientData(err) {
					skipped[i] = err
					return nil
				}
				return fmt.Errorf("%s forecast: %w", method, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &stats.ForecastComparison{Horizon: horizon, Results: []stats.ForecastResult{}}
	bestMAPE := math.Inf(1)
	for i, method := range stats.ForecastMethods {
		if skipped[i] != nil {
			if cmp.Skipped == nil {
				cmp.Skipped = make(map[stats.ForecastMethod]string)
			}
			cmp.Skipped[method] = skipped[i].Error()
			e.logger.Debug("skipping %s: %v", method, skipped[i])
			continue
		}
		res := results[i]
		cmp.Results = append(cmp.Results, *res)
		if res.MAPE < bestMAPE {
			bestMAPE = res.MAPE
			cmp.Best = method
		}
	}
	return cmp, nil
}

// prepare validates the horizon and returns the finite observations
func prepare(ts dataset.TimeSeries, horizon, required int, op string) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidHorizon, horizon)
	}
	values := make([]float64, 0, ts.Len())
	for _, v := range ts.Values() {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) < required {
		return nil, core.NewInsufficientDataError(op, required, len(values))
	}
	return values, nil
}

// fit is what a strategy hands back for scoring
type fit struct {
	method      stats.ForecastMethod
	actual      []float64 // observations the back-test covers
	fitted      []float64 // one-step-ahead values aligned with actual
	predictions []float64
	params      map[string]float64
	description string
}

func (e *Engine) finish(ts dataset.TimeSeries, f fit) *stats.ForecastResult {
	acc := computeAccuracy(f.actual, f.fitted)
	z := brief.NormalQuantile(0.5 + e.cfg.Confidence/2)

	lower := make([]float64, len(f.predictions))
	upper := make([]float64, len(f.predictions))
	for i, p := range f.predictions {
		lower[i] = p - z*acc.RMSE
		upper[i] = p + z*acc.RMSE
	}

	return &stats.ForecastResult{
		ID:          core.NewID(),
		Method:      f.method,
		Timestamps:  futureTimestamps(ts.Timestamps(), len(f.predictions)),
		Predictions: f.predictions,
		Lower:       lower,
		Upper:       upper,
		MAE:         acc.MAE,
		RMSE:        acc.RMSE,
		MAPE:        acc.MAPE,
		Description: f.description,
		Parameters:  f.params,
	}
}

func validFactor(v float64) bool {
	return v > 0 && v < 1
}
