package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeAccuracySkipsZeroActualsInMAPE(t *testing.T) {
	acc := computeAccuracy([]float64{0, 10}, []float64{1, 12})
	assert.InDelta(t, 1.5, acc.MAE, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5), acc.RMSE, 1e-9)
	assert.InDelta(t, 20, acc.MAPE, 1e-9)

	zeros := computeAccuracy([]float64{0, 0}, []float64{1, 1})
	assert.InDelta(t, 1, zeros.MAE, 1e-9)
	assert.Zero(t, zeros.MAPE)

	assert.Equal(t, Accuracy{}, computeAccuracy(nil, nil))
}

func TestFutureTimestampsMonthly(t *testing.T) {
	var observed []time.Time
	for m := 1; m <= 12; m++ {
		observed = append(observed, time.Date(2023, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
	}
	next := futureTimestamps(observed, 3)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}, next)
}

func TestFutureTimestampsMonthEndIsPinned(t *testing.T) {
	observed := []time.Time{
		time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	next := futureTimestamps(observed, 2)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), next[0])
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), next[1])
}

func TestFutureTimestampsMedianGap(t *testing.T) {
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	observed := []time.Time{start, start.AddDate(0, 0, 7), start.AddDate(0, 0, 14), start.AddDate(0, 0, 22)}
	next := futureTimestamps(observed, 2)
	assert.Equal(t, observed[3].AddDate(0, 0, 7), next[0])
	assert.Equal(t, observed[3].AddDate(0, 0, 14), next[1])
}

func TestFutureTimestampsDefaultsToDaily(t *testing.T) {
	at := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	next := futureTimestamps([]time.Time{at, at}, 2)
	assert.Equal(t, []time.Time{at.AddDate(0, 0, 1), at.AddDate(0, 0, 2)}, next)

	assert.Empty(t, futureTimestamps([]time.Time{at}, 0))
}
