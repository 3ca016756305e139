package engine

import (
	"fmt"
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// FitRegression fits y on x with the default thresholds
func FitRegression(x, y []float64) stats.RegressionModel {
	return defaultEngine.FitRegression(x, y)
}

// FitColumns fits target on predictor with the default thresholds
func FitColumns(ds NumericSource, predictor, target string) (stats.RegressionModel, error) {
	return defaultEngine.FitColumns(ds, predictor, target)
}

// FitRegression is ordinary least squares of y on x. Pairs with a non-finite side are
// dropped. Fewer than two points or a constant predictor yield slope 0 and intercept mean(y).
func (e *StatsEngine) FitRegression(x, y []float64) stats.RegressionModel {
	xs, ys := finitePairs(x, y)
	n := len(xs)
	model := stats.RegressionModel{SampleSize: n, Strength: stats.StrengthWeak}

	if n < 2 || floats.Max(xs) == floats.Min(xs) {
		if n > 0 {
			model.Intercept, _ = mstats.Mean(ys)
		}
		return model
	}

	intercept, slope := gstat.LinearRegression(xs, ys, nil, false)
	model.Slope = slope
	model.Intercept = intercept

	r2 := 0.0
	if floats.Max(ys) != floats.Min(ys) {
		r2 = gstat.RSquared(xs, ys, nil, intercept, slope)
	}
	if math.IsNaN(r2) {
		r2 = 0
	}
	model.RSquared = math.Max(0, math.Min(1, r2))
	model.Strength = e.cfg.Regression.Classify(math.Sqrt(model.RSquared))
	return model
}

// FitColumns regresses one dataset column on another using rows where both are numeric
func (e *StatsEngine) FitColumns(ds NumericSource, predictor, target string) (stats.RegressionModel, error) {
	x, y, err := ds.NumericPairs(predictor, target)
	if err != nil {
		return stats.RegressionModel{}, fmt.Errorf("fit %s on %s: %w", target, predictor, err)
	}
	model := e.FitRegression(x, y)
	model.Predictor = predictor
	model.Target = target
	return model, nil
}

func finitePairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	return xs, ys
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
