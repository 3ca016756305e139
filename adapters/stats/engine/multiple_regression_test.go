package engine

import (
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	domaindataset "github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driverRows has sales = 3 + 2*price - promo exactly; price and promo share a spread
func driverRows() []domaindataset.Row {
	promo := []float64{2, 1, 4, 3, 6, 5, 8, 7}
	rows := make([]domaindataset.Row, 0, len(promo))
	for i, p := range promo {
		price := float64(i + 1)
		rows = append(rows, domaindataset.Row{
			"price": price,
			"promo": p,
			"sales": 3 + 2*price - p,
		})
	}
	return rows
}

func TestFitMultipleRecoversExactPlane(t *testing.T) {
	var x [][]float64
	var y []float64
	for _, row := range driverRows() {
		x = append(x, []float64{row["price"].(float64), row["promo"].(float64)})
		y = append(y, row["sales"].(float64))
	}

	model, err := FitMultiple([]string{"price", "promo"}, x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3, model.Intercept, 1e-9)
	assert.InDelta(t, 1, model.RSquared, 1e-9)
	assert.InDelta(t, 1, model.AdjustedRSquared, 1e-9)
	assert.Equal(t, 8, model.SampleSize)
	assert.Equal(t, stats.StrengthStrong, model.Strength)
	assert.Equal(t, "price", model.TopDriver)

	require.Len(t, model.Features, 2)
	price, promo := model.Features[0], model.Features[1]
	assert.Equal(t, "price", price.Feature)
	assert.InDelta(t, 2, price.Coefficient, 1e-9)
	assert.InDelta(t, -1, promo.Coefficient, 1e-9)
	assert.InDelta(t, 2.0/3, price.Importance, 1e-9)
	assert.InDelta(t, 1.0/3, promo.Importance, 1e-9)
	assert.Greater(t, price.Standardized, 0.0)
	assert.Less(t, promo.Standardized, 0.0)

	assert.InDelta(t, 3+2*10-4, model.Predict(map[string]float64{"price": 10, "promo": 4}), 1e-9)
}

func TestFitMultipleRejectsDegenerateDesigns(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}, {5, 10}}
	y := []float64{1, 3, 2, 5, 4}

	tests := []struct {
		name     string
		features []string
		x        [][]float64
		y        []float64
		want     error
	}{
		{"collinear", []string{"a", "b"}, x, y, core.ErrCollinearFeatures},
		{"constant feature", []string{"a", "b"}, [][]float64{{1, 7}, {2, 7}, {3, 7}, {4, 7}}, y[:4], core.ErrCollinearFeatures},
		{"too few rows", []string{"a", "b"}, x[:3], y[:3], core.ErrInsufficientData},
		{"no features", nil, x, y, core.ErrInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitMultiple(tt.features, tt.x, tt.y)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFitDriversDefaultsToLastNumericTarget(t *testing.T) {
	rows := driverRows()
	rows = append(rows, domaindataset.Row{"price": "n/a", "promo": 1.0, "sales": 100.0})
	ds := dataset.NewWithColumns([]string{"price", "promo", "sales"}, rows)
	eng := NewStatsEngine(DefaultConfig())

	model, err := eng.FitDrivers(ds, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "sales", model.Target)
	assert.Equal(t, 8, model.SampleSize, "rows with a non-numeric feature are skipped")
	assert.Equal(t, "price", model.TopDriver)

	one, err := eng.FitDrivers(ds, "sales", []string{"price"})
	require.NoError(t, err)
	require.Len(t, one.Features, 1)
	assert.InDelta(t, 1, one.Features[0].Importance, 1e-9)

	_, err = eng.FitDrivers(ds, "sales", []string{"missing"})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}
