// Package testkit provides deterministic series and table fixtures for tests.
package testkit

import (
	"math"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	tabular "github.com/StephenStolk/analyseX-sub001/internal/dataset"
)

// Epoch is the first timestamp of generated series
var Epoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Linear returns intercept + slope*i for i in [0, n)
func Linear(n int, intercept, slope float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = intercept + slope*float64(i)
	}
	return values
}

// Constant returns n copies of v
func Constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

// Seasonal returns level + trend*i plus a repeating pattern
func Seasonal(n int, level, trend float64, pattern []float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = level + trend*float64(i)
		if len(pattern) > 0 {
			values[i] += pattern[i%len(pattern)]
		}
	}
	return values
}

// Sine returns a sine wave with the given period around level
func Sine(n int, level, amplitude float64, period int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = level + amplitude*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return values
}

// WithSpikes copies values and sets the given indices to spike
func WithSpikes(values []float64, spike float64, indices ...int) []float64 {
	out := append([]float64(nil), values...)
	for _, i := range indices {
		if i >= 0 && i < len(out) {
			out[i] = spike
		}
	}
	return out
}

// MonthlySeries stamps values on the first day of consecutive months
func MonthlySeries(values []float64) dataset.TimeSeries {
	points := make([]dataset.Point, len(values))
	for i, v := range values {
		points[i] = dataset.Point{Timestamp: Epoch.AddDate(0, i, 0), Value: v}
	}
	return dataset.TimeSeries{Points: points}
}

// DailySeries stamps values on consecutive days
func DailySeries(values []float64) dataset.TimeSeries {
	return dataset.NewIndexedSeries(Epoch, values)
}

// Grid returns rows x cols cells named c0..c{cols-1}, all filled with v
func Grid(rows, cols int, v interface{}) []dataset.Row {
	out := make([]dataset.Row, rows)
	for r := range out {
		row := make(dataset.Row, cols)
		for c := 0; c < cols; c++ {
			row[columnName(c)] = v
		}
		out[r] = row
	}
	return out
}

func columnName(c int) string {
	return "c" + string(rune('0'+c%10))
}

// SalesDataset generates the default sales fixture and profiles it
func SalesDataset(config ...SalesGeneratorConfig) *tabular.Dataset {
	cfg := DefaultSalesConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return tabular.NewWithColumns(SalesColumns, NewSalesDataGenerator(cfg).Generate())
}
