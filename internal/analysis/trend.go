package analysis

import (
	"math"

	"github.com/StephenStolk/analyseX-sub001/adapters/stats/engine"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	mstats "github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
)

// TrendOptions parameterise direction, volatility and change point detection
type TrendOptions struct {
	ChangeThreshold     float64 `json:"change_threshold"`     // percent change between halves for up/down
	VolatilityThreshold float64 `json:"volatility_threshold"` // percent coefficient of variation for volatile
	ChangeWindow        int     `json:"change_window"`        // points on each side of a candidate change point
	ChangeSensitivity   float64 `json:"change_sensitivity"`   // mean shift in pooled standard errors
	SeasonPeriod        int     `json:"season_period"`
}

// DefaultTrendOptions returns ±5% direction bands, 40% volatility, a 5 point window
// at 2 standard errors and a 12 period season
func DefaultTrendOptions() TrendOptions {
	return TrendOptions{
		ChangeThreshold:     5,
		VolatilityThreshold: 40,
		ChangeWindow:        5,
		ChangeSensitivity:   2.0,
		SeasonPeriod:        12,
	}
}

// AnalyzeTrend classifies a series with the default options
func AnalyzeTrend(series []float64) stats.TrendProfile {
	return AnalyzeTrendWith(series, DefaultTrendOptions())
}

// AnalyzeTrendWith compares the means of the first and second halves of the series.
// High volatility overrides the direction. Fewer than two points are stable.
func AnalyzeTrendWith(series []float64, opts TrendOptions) stats.TrendProfile {
	values := finiteValues(series)
	profile := stats.TrendProfile{Direction: stats.TrendStable, ChangePoints: []int{}}
	if len(values) < 2 {
		return profile
	}

	half := len(values) / 2
	firstMean, _ := mstats.Mean(values[:half])
	secondMean, _ := mstats.Mean(values[half:])
	change := percentChange(firstMean, secondMean)

	mean, _ := mstats.Mean(values)
	stdDev, _ := mstats.StandardDeviationPopulation(values)
	scale := math.Abs(mean)
	if scale == 0 {
		// series centred on zero are scaled by their mean magnitude
		scale = meanAbs(values)
	}
	if scale > 0 {
		profile.Volatility = stdDev / scale * 100
	}
	profile.Strength = math.Abs(change)

	switch {
	case profile.Volatility > opts.VolatilityThreshold:
		profile.Direction = stats.TrendVolatile
	case change > opts.ChangeThreshold:
		profile.Direction = stats.TrendUpward
	case change < -opts.ChangeThreshold:
		profile.Direction = stats.TrendDownward
	}

	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}
	fit := engine.FitRegression(index, values)
	profile.Slope = fit.Slope
	profile.RSquared = fit.RSquared

	profile.ChangePoints = changePoints(values, opts.ChangeWindow, opts.ChangeSensitivity)
	profile.SeasonalityStrength = seasonalityStrength(values, opts.SeasonPeriod)
	return profile
}

func meanAbs(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += math.Abs(v)
	}
	return total / float64(len(values))
}

// percentChange is relative to the magnitude of the first mean; from a zero base any
// movement counts as ±100%
func percentChange(from, to float64) float64 {
	if from == 0 {
		switch {
		case to > 0:
			return 100
		case to < 0:
			return -100
		default:
			return 0
		}
	}
	return (to - from) / math.Abs(from) * 100
}

// changePoints scans for mean shifts between adjacent windows. Runs of consecutive
// flagged indices collapse to the index with the largest shift.
func changePoints(values []float64, window int, sensitivity float64) []int {
	points := []int{}
	n := len(values)
	if window < 2 || n < 2*window || n < 10 {
		return points
	}

	runStart, runBest, bestStat := -1, -1, 0.0
	flush := func() {
		if runBest >= 0 {
			points = append(points, runBest)
		}
		runStart, runBest, bestStat = -1, -1, 0
	}

	for i := window; i <= n-window; i++ {
		before := values[i-window : i]
		after := values[i : i+window]
		shift := math.Abs(gstat.Mean(after, nil) - gstat.Mean(before, nil))
		pooled := math.Sqrt((gstat.Variance(before, nil) + gstat.Variance(after, nil)) / 2)

		var score float64
		switch {
		case pooled > 0:
			score = shift / (pooled * math.Sqrt(2/float64(window)))
		case shift > 0:
			score = math.Inf(1)
		}

		if score > sensitivity {
			if runStart < 0 {
				runStart = i
			}
			if score > bestStat {
				bestStat = score
				runBest = i
			}
			continue
		}
		flush()
	}
	flush()
	return points
}

// seasonalityStrength is the coefficient of variation of the first season
func seasonalityStrength(values []float64, period int) float64 {
	if period < 2 || len(values) < period {
		return 0
	}
	mean, _ := mstats.Mean(values[:period])
	if mean == 0 {
		return 0
	}
	stdDev, _ := mstats.StandardDeviationPopulation(values[:period])
	return stdDev / math.Abs(mean)
}
