package forecast

import (
	"fmt"

	"github.com/StephenStolk/analyseX-sub001/adapters/stats/engine"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// Linear fits a least squares line over (index, value) and extends it past the last index
func (e *Engine) Linear(ts dataset.TimeSeries, horizon int) (*stats.ForecastResult, error) {
	values, err := prepare(ts, horizon, MinPoints, "linear forecast")
	if err != nil {
		return nil, err
	}

	n := len(values)
	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}
	model := engine.FitRegression(index, values)

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = model.Predict(float64(i))
	}
	predictions := make([]float64, horizon)
	for h := range predictions {
		predictions[h] = model.Predict(float64(n + h))
	}

	return e.finish(ts, fit{
		method:      stats.MethodLinear,
		actual:      values,
		fitted:      fitted,
		predictions: predictions,
		params: map[string]float64{
			"slope":     model.Slope,
			"intercept": model.Intercept,
			"r_squared": model.RSquared,
		},
		description: fmt.Sprintf("Linear trend of %.2f per period (R² %.2f)", model.Slope, model.RSquared),
	}), nil
}
