package forecast

import (
	"fmt"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// MovingAverage predicts each step as the mean of the trailing window, feeding
// predictions back into the window. The window is clamped to [1, n-1].
func (e *Engine) MovingAverage(ts dataset.TimeSeries, horizon, window int) (*stats.ForecastResult, error) {
	values, err := prepare(ts, horizon, MinPoints, "moving average forecast")
	if err != nil {
		return nil, err
	}

	n := len(values)
	k := window
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}

	// sma[i] is the mean of values[i : i+k], the one-step forecast for period i+k
	sma := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](k).Compute(helper.SliceToChan(values)))
	actual := values[k:]
	fitted := sma
	if len(fitted) > len(actual) {
		fitted = fitted[:len(actual)]
	}

	buf := append([]float64(nil), values[n-k:]...)
	predictions := make([]float64, horizon)
	for h := range predictions {
		sum := 0.0
		for _, v := range buf[len(buf)-k:] {
			sum += v
		}
		predictions[h] = sum / float64(k)
		buf = append(buf, predictions[h])
	}

	return e.finish(ts, fit{
		method:      stats.MethodMovingAverage,
		actual:      actual,
		fitted:      fitted,
		predictions: predictions,
		params:      map[string]float64{"window": float64(k)},
		description: fmt.Sprintf("Rolling %d-period moving average", k),
	}), nil
}
