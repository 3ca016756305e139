// Package brief computes the descriptive statistics of a numeric series.
package brief

import (
	"math"
	"sort"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// Options tunes the outlier fence and the normality decision
type Options struct {
	OutlierFactor  float64 // IQR multiplier for the outlier fence
	NormalityAlpha float64 // significance level of the Jarque-Bera test
	NormalityMinN  int     // smallest sample the normality test runs on
}

// DefaultOptions returns the Tukey fence and a 5% normality test
func DefaultOptions() Options {
	return Options{
		OutlierFactor:  1.5,
		NormalityAlpha: 0.05,
		NormalityMinN:  8,
	}
}

// Computer turns a numeric series into DescriptiveStats
type Computer struct {
	opts Options
}

// NewComputer creates a computer with the given options
func NewComputer(opts Options) *Computer {
	if opts.OutlierFactor <= 0 {
		opts.OutlierFactor = DefaultOptions().OutlierFactor
	}
	if opts.NormalityAlpha <= 0 || opts.NormalityAlpha >= 1 {
		opts.NormalityAlpha = DefaultOptions().NormalityAlpha
	}
	if opts.NormalityMinN < 3 {
		opts.NormalityMinN = DefaultOptions().NormalityMinN
	}
	return &Computer{opts: opts}
}

var defaultComputer = NewComputer(DefaultOptions())

// Compute summarises data with the default options
func Compute(data []float64) stats.DescriptiveStats {
	return defaultComputer.Compute(data)
}

// Compute never fails: empty or degenerate input yields zero-valued fields
func (c *Computer) Compute(data []float64) stats.DescriptiveStats {
	data = finite(data)
	out := stats.DescriptiveStats{Outliers: []float64{}}
	if len(data) == 0 {
		return out
	}

	out.Count = len(data)
	out.Sum, _ = mstats.Sum(data)
	out.Min, _ = mstats.Min(data)
	out.Max, _ = mstats.Max(data)
	out.Range = out.Max - out.Min
	out.Mean, _ = mstats.Mean(data)
	out.Median, _ = mstats.Median(data)
	out.Mode = firstSeenMode(data)
	out.Variance, _ = mstats.PopulationVariance(data)
	out.StdDev, _ = mstats.StandardDeviationPopulation(data)
	if out.Mean != 0 {
		out.CoefficientOfVariation = out.StdDev / math.Abs(out.Mean)
	}

	out.Skewness = skewness(data, out.Mean, out.StdDev)
	out.Kurtosis = excessKurtosis(data, out.Mean, out.StdDev)

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	out.Quartiles = quartiles(sorted)
	out.OutlierBounds = fence(out.Quartiles, c.opts.OutlierFactor)
	out.Outliers = outliers(data, out.OutlierBounds)
	out.Normality = c.normality(len(data), out.Skewness, out.Kurtosis)

	return out
}

// finite drops NaN and infinite values
func finite(data []float64) []float64 {
	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	return clean
}

// firstSeenMode returns the most frequent value; ties resolve to the value seen first.
// A series of unique values has no repeated candidate and reports its first element.
func firstSeenMode(data []float64) float64 {
	modes, err := mstats.Mode(data)
	if err != nil || len(modes) == 0 {
		return data[0]
	}
	candidates := make(map[float64]bool, len(modes))
	for _, m := range modes {
		candidates[m] = true
	}
	for _, v := range data {
		if candidates[v] {
			return v
		}
	}
	return modes[0]
}

// skewness is the mean cubed z-score, 0 below three points or with no spread
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / stdDev
		sum += z * z * z
	}
	return sum / float64(len(data))
}

// excessKurtosis is the mean fourth-power z-score minus 3, 0 below four points
func excessKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / stdDev
		sum += z * z * z * z
	}
	return sum/float64(len(data)) - 3
}
