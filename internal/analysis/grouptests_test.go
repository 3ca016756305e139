package analysis

import (
	"testing"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func group(name string, values ...float64) dataset.Group {
	return dataset.Group{Name: name, Values: values}
}

func TestIndependentTTest(t *testing.T) {
	tests := []struct {
		name        string
		a, b        dataset.Group
		statistic   float64
		pValue      float64
		significant bool
		contains    string
	}{
		{
			name:      "separated means",
			a:         group("control", 1, 2, 3, 4, 5),
			b:         group("treated", 6, 7, 8, 9, 10),
			statistic: -5, pValue: 0.001052825793366539, significant: true,
			contains: "control is lower",
		},
		{
			name:      "overlapping means",
			a:         group("north", 1, 2, 3, 4, 5),
			b:         group("south", 2, 3, 4, 5, 6),
			statistic: -1, pValue: 0.34659350708733416, significant: false,
			contains: "No statistically significant difference",
		},
		{
			name:      "identical constant groups",
			a:         group("a", 4, 4, 4),
			b:         group("b", 4, 4, 4),
			statistic: 0, pValue: 1, significant: false,
			contains: "p=1.000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, err := IndependentTTest(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, stats.TestIndependentT, test.Kind)
			assert.InDelta(t, tt.statistic, test.Statistic, 1e-9)
			assert.InDelta(t, tt.pValue, test.PValue, 1e-6)
			assert.Equal(t, tt.significant, test.Significant)
			assert.Contains(t, test.Interpretation, tt.contains)
			assert.Equal(t, float64(len(tt.a.Values)+len(tt.b.Values)-2), test.DF1)
		})
	}
}

func TestIndependentTTestConstantButDifferentGroups(t *testing.T) {
	test, err := IndependentTTest(group("high", 9, 9, 9), group("low", 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, UnboundedStatistic, test.Statistic)
	assert.Zero(t, test.PValue)
	assert.True(t, test.Significant)
	assert.Contains(t, test.Interpretation, "high is higher")
}

func TestOneWayANOVA(t *testing.T) {
	tests := []struct {
		name        string
		groups      []dataset.Group
		statistic   float64
		pValue      float64
		significant bool
	}{
		{
			name:      "three separated groups",
			groups:    []dataset.Group{group("a", 1, 2, 3), group("b", 4, 5, 6), group("c", 7, 8, 9)},
			statistic: 27, pValue: 0.001, significant: true,
		},
		{
			name:      "equal means",
			groups:    []dataset.Group{group("a", 1, 2, 3), group("b", 3, 2, 1), group("c", 2, 1, 3)},
			statistic: 0, pValue: 1, significant: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, err := OneWayANOVA(tt.groups)
			require.NoError(t, err)
			assert.Equal(t, stats.TestOneWayANOVA, test.Kind)
			assert.InDelta(t, tt.statistic, test.Statistic, 1e-9)
			assert.InDelta(t, tt.pValue, test.PValue, 1e-9)
			assert.Equal(t, tt.significant, test.Significant)
			assert.Equal(t, 2.0, test.DF1)
			assert.Equal(t, 6.0, test.DF2)
			require.Len(t, test.Groups, 3)
		})
	}
}

func TestOneWayANOVANoWithinVariance(t *testing.T) {
	test, err := OneWayANOVA([]dataset.Group{group("a", 1, 1), group("b", 2, 2), group("c", 3, 3)})
	require.NoError(t, err)
	assert.Equal(t, UnboundedStatistic, test.Statistic)
	assert.Zero(t, test.PValue)
	assert.Contains(t, test.Interpretation, "Statistically significant differences")
}

func TestCompareGroupsChoosesTest(t *testing.T) {
	two, err := CompareGroups([]dataset.Group{group("a", 1, 2, 3), group("b", 4, 5, 6), group("tiny", 99)})
	require.NoError(t, err)
	assert.Equal(t, stats.TestIndependentT, two.Kind, "single-value groups are left out")
	assert.Len(t, two.Groups, 2)

	three, err := CompareGroups([]dataset.Group{group("a", 1, 2, 3), group("b", 4, 5, 6), group("c", 7, 8, 9)})
	require.NoError(t, err)
	assert.Equal(t, stats.TestOneWayANOVA, three.Kind)
	assert.Equal(t, "c", three.Groups[2].Name)
	assert.InDelta(t, 8, three.Groups[2].Mean, 1e-9)

	_, err = CompareGroups([]dataset.Group{group("a", 1, 2, 3), group("b", 4)})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}
