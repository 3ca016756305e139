package forecast

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// Accuracy is the back-test error of a strategy
type Accuracy struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
}

// computeAccuracy compares aligned actual and predicted values. Periods whose
// actual value is zero are left out of MAPE; with none left MAPE is 0.
func computeAccuracy(actual, predicted []float64) Accuracy {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return Accuracy{}
	}

	absErrs := make([]float64, 0, n)
	sqErrs := make([]float64, 0, n)
	pctErrs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		diff := actual[i] - predicted[i]
		absErrs = append(absErrs, math.Abs(diff))
		sqErrs = append(sqErrs, diff*diff)
		if actual[i] != 0 {
			pctErrs = append(pctErrs, math.Abs(diff)/math.Abs(actual[i]))
		}
	}

	var acc Accuracy
	acc.MAE, _ = mstats.Mean(absErrs)
	mse, _ := mstats.Mean(sqErrs)
	acc.RMSE = math.Sqrt(mse)
	if len(pctErrs) > 0 {
		mape, _ := mstats.Mean(pctErrs)
		acc.MAPE = mape * 100
	}
	return acc
}
