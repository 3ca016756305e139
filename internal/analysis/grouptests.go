package analysis

import (
	"fmt"
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis/brief"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// SignificanceLevel is the p-value below which a group difference is reported as significant
	SignificanceLevel = 0.05
	// UnboundedStatistic stands in for an infinite statistic when groups differ without any
	// spread inside them. JSON has no infinity.
	UnboundedStatistic = math.MaxFloat64
)

// CompareGroups runs an independent t-test for two groups and a one-way ANOVA for more.
// Groups with fewer than two values are left out.
func CompareGroups(groups []dataset.Group) (stats.GroupTest, error) {
	usable := make([]dataset.Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Values) >= 2 {
			usable = append(usable, g)
		}
	}
	if len(usable) < 2 {
		return stats.GroupTest{}, core.NewInsufficientDataError("compare groups", 2, len(usable))
	}
	if len(usable) == 2 {
		return IndependentTTest(usable[0], usable[1])
	}
	return OneWayANOVA(usable)
}

// IndependentTTest compares two means with a pooled-variance Student's t-test
func IndependentTTest(a, b dataset.Group) (stats.GroupTest, error) {
	n1, n2 := len(a.Values), len(b.Values)
	if n1 < 2 || n2 < 2 {
		return stats.GroupTest{}, core.NewInsufficientDataError("t-test", 2, min(n1, n2))
	}
	mean1, _ := mstats.Mean(a.Values)
	mean2, _ := mstats.Mean(b.Values)
	var1, _ := mstats.SampleVariance(a.Values)
	var2, _ := mstats.SampleVariance(b.Values)

	df := n1 + n2 - 2
	pooled := (float64(n1-1)*var1 + float64(n2-1)*var2) / float64(df)
	se := math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))

	test := stats.GroupTest{
		Kind: stats.TestIndependentT,
		Groups: []stats.GroupSummary{
			{Name: a.Name, Size: n1, Mean: mean1},
			{Name: b.Name, Size: n2, Mean: mean2},
		},
		DF1: float64(df),
	}
	switch {
	case se > 0:
		test.Statistic = (mean1 - mean2) / se
	case mean1 != mean2:
		test.Statistic = math.Copysign(UnboundedStatistic, mean1-mean2)
	}
	test.PValue = brief.TTestPValue(test.Statistic, df)
	test.Significant = test.PValue < SignificanceLevel
	test.Interpretation = interpretTTest(test.PValue, a.Name, mean1, mean2)
	return test, nil
}

// OneWayANOVA tests whether any of the group means differ
func OneWayANOVA(groups []dataset.Group) (stats.GroupTest, error) {
	k := len(groups)
	if k < 2 {
		return stats.GroupTest{}, core.NewInsufficientDataError("anova groups", 2, k)
	}
	test := stats.GroupTest{Kind: stats.TestOneWayANOVA, Groups: make([]stats.GroupSummary, k)}

	total, n := 0.0, 0
	for i, g := range groups {
		if len(g.Values) == 0 {
			return stats.GroupTest{}, core.NewInsufficientDataError("anova group "+g.Name, 1, 0)
		}
		mean, _ := mstats.Mean(g.Values)
		test.Groups[i] = stats.GroupSummary{Name: g.Name, Size: len(g.Values), Mean: mean}
		sum, _ := mstats.Sum(g.Values)
		total += sum
		n += len(g.Values)
	}
	if n <= k {
		return stats.GroupTest{}, core.NewInsufficientDataError("anova", k+1, n)
	}
	grand := total / float64(n)

	between, within := 0.0, 0.0
	for i, g := range groups {
		d := test.Groups[i].Mean - grand
		between += float64(len(g.Values)) * d * d
		for _, v := range g.Values {
			within += (v - test.Groups[i].Mean) * (v - test.Groups[i].Mean)
		}
	}
	test.DF1 = float64(k - 1)
	test.DF2 = float64(n - k)

	switch {
	case within > 0:
		test.Statistic = (between / test.DF1) / (within / test.DF2)
		test.PValue = distuv.F{D1: test.DF1, D2: test.DF2}.Survival(test.Statistic)
	case between > 0:
		test.Statistic = UnboundedStatistic
		test.PValue = 0
	default:
		test.PValue = 1
	}
	test.Significant = test.PValue < SignificanceLevel
	test.Interpretation = interpretANOVA(test.PValue)
	return test, nil
}

func interpretTTest(p float64, first string, mean1, mean2 float64) string {
	if p >= SignificanceLevel {
		return fmt.Sprintf("No statistically significant difference found (p=%.3f).", p)
	}
	direction := "higher"
	if mean1 < mean2 {
		direction = "lower"
	}
	if first == "" {
		first = "First group"
	}
	return fmt.Sprintf("Statistically significant difference found (p=%.3f). %s is %s.", p, first, direction)
}

func interpretANOVA(p float64) string {
	if p < SignificanceLevel {
		return fmt.Sprintf("Statistically significant differences found between groups (p=%.3f).", p)
	}
	return fmt.Sprintf("No statistically significant differences found between groups (p=%.3f).", p)
}
