package forecast

import (
	"fmt"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// ExponentialSmoothing is single exponential smoothing; every prediction equals the final level
func (e *Engine) ExponentialSmoothing(ts dataset.TimeSeries, horizon int, alpha float64) (*stats.ForecastResult, error) {
	values, err := prepare(ts, horizon, MinPoints, "exponential smoothing forecast")
	if err != nil {
		return nil, err
	}
	if !validFactor(alpha) {
		alpha = DefaultConfig().SmoothingAlpha
	}

	level := values[0]
	fitted := make([]float64, 0, len(values)-1)
	for _, v := range values[1:] {
		fitted = append(fitted, level)
		level = alpha*v + (1-alpha)*level
	}

	predictions := make([]float64, horizon)
	for h := range predictions {
		predictions[h] = level
	}

	return e.finish(ts, fit{
		method:      stats.MethodExponentialSmoothing,
		actual:      values[1:],
		fitted:      fitted,
		predictions: predictions,
		params:      map[string]float64{"alpha": alpha, "level": level},
		description: fmt.Sprintf("Exponential smoothing (alpha %.2f) holding level %.2f", alpha, level),
	}), nil
}
