package brief

import (
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// TTestPValue is the two-tailed p-value of a t statistic
func TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return 1.0
	}
	if math.IsInf(tStatistic, 0) {
		return 0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return 2 * tDist.Survival(math.Abs(tStatistic))
}

// CorrelationPValue tests r against zero with n-2 degrees of freedom
func CorrelationPValue(r float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(sampleSize - 2)
	return TTestPValue(r*math.Sqrt(df/(1-r*r)), sampleSize-2)
}

// ChiSquarePValue is the upper-tail probability of a chi-square statistic
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	return distuv.ChiSquared{K: float64(degreesOfFreedom)}.Survival(chiSquare)
}

// NormalQuantile is the inverse standard normal CDF
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// quartiles uses linear-index truncation: sorted[floor(n*p)]
func quartiles(sorted []float64) stats.Quartiles {
	q1 := percentileIndex(sorted, 0.25)
	q3 := percentileIndex(sorted, 0.75)
	return stats.Quartiles{Q1: q1, Q3: q3, IQR: q3 - q1}
}

func percentileIndex(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func fence(q stats.Quartiles, factor float64) stats.Bounds {
	return stats.Bounds{
		Lower: q.Q1 - factor*q.IQR,
		Upper: q.Q3 + factor*q.IQR,
	}
}

// outliers keeps values strictly outside the fence, in series order
func outliers(data []float64, bounds stats.Bounds) []float64 {
	out := []float64{}
	for _, v := range data {
		if v < bounds.Lower || v > bounds.Upper {
			out = append(out, v)
		}
	}
	return out
}

// normality runs a Jarque-Bera test from the sample skewness and excess kurtosis
func (c *Computer) normality(n int, skew, exKurt float64) stats.Normality {
	if n < c.opts.NormalityMinN {
		return stats.Normality{}
	}
	jb := float64(n) / 6 * (skew*skew + exKurt*exKurt/4)
	p := ChiSquarePValue(jb, 2)
	return stats.Normality{
		Tested:   true,
		IsNormal: p > c.opts.NormalityAlpha,
		PValue:   p,
	}
}
