package testkit

import (
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesGeneratorIsDeterministic(t *testing.T) {
	a := NewSalesDataGenerator(DefaultSalesConfig()).Generate()
	b := NewSalesDataGenerator(DefaultSalesConfig()).Generate()
	assert.Equal(t, a, b)

	other := DefaultSalesConfig()
	other.Seed = 7
	assert.NotEqual(t, a, NewSalesDataGenerator(other).Generate())
}

func TestSalesDatasetSchema(t *testing.T) {
	ds := SalesDataset()
	assert.Equal(t, 36, ds.RowCount())
	assert.Equal(t, SalesColumns, ds.Columns())
	assert.ElementsMatch(t, []string{"revenue", "marketing_spend", "returns"}, ds.NumericColumns())
	assert.Equal(t, []string{"month"}, ds.TemporalColumns())
	assert.Equal(t, []string{"region"}, ds.CategoricalColumns())

	ts, err := ds.TimeSeries("month", "revenue")
	require.NoError(t, err)
	assert.Equal(t, 36, ts.Len())
}

func TestSalesGeneratorInjectsAnomaliesAndGaps(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.AnomalyMonths = []int{20}
	cfg.MissingRate = 1
	rows := NewSalesDataGenerator(cfg).Generate()

	for _, row := range rows {
		assert.Equal(t, "", row["marketing_spend"])
	}

	ds := SalesDataset(cfg)
	revenue, err := ds.NumericSeries("revenue")
	require.NoError(t, err)
	assert.Greater(t, revenue[20], 2.5*revenue[19])
}

func TestSeriesHelpers(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 5}, Linear(3, 1, 2))
	assert.Equal(t, []float64{4, 4}, Constant(2, 4))
	assert.Equal(t, []float64{10, 21, 10, 21}, Seasonal(4, 10, 0, []float64{0, 11}))
	assert.Equal(t, []float64{1, 99, 1}, WithSpikes(Constant(3, 1), 99, 1, 7))

	ms := MonthlySeries([]float64{1, 2})
	assert.Equal(t, Epoch.AddDate(0, 1, 0), ms.Points[1].Timestamp)
	assert.Equal(t, dataset.TimeSeries{Points: []dataset.Point{{Timestamp: Epoch, Value: 5}}}, DailySeries([]float64{5}))

	grid := Grid(2, 3, 1.0)
	require.Len(t, grid, 2)
	assert.Len(t, grid[0], 3)
	assert.Equal(t, 1.0, grid[1]["c2"])
}
