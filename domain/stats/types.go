package stats

import (
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
)

// DescriptiveStats summarises one numeric series
type DescriptiveStats struct {
	Count                  int       `json:"count"`
	Sum                    float64   `json:"sum"`
	Min                    float64   `json:"min"`
	Max                    float64   `json:"max"`
	Range                  float64   `json:"range"`
	Mean                   float64   `json:"mean"`
	Median                 float64   `json:"median"`
	Mode                   float64   `json:"mode"`
	Variance               float64   `json:"variance"`
	StdDev                 float64   `json:"std_dev"`
	CoefficientOfVariation float64   `json:"coefficient_of_variation"`
	Quartiles              Quartiles `json:"quartiles"`
	Skewness               float64   `json:"skewness"`
	Kurtosis               float64   `json:"kurtosis"` // excess kurtosis
	OutlierBounds          Bounds    `json:"outlier_bounds"`
	Outliers               []float64 `json:"outliers"`
	Normality              Normality `json:"normality"`
}

// Quartiles holds the 25th/75th percentiles and their spread
type Quartiles struct {
	Q1  float64 `json:"q1"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// Bounds is a closed interval
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Normality is the outcome of a Jarque-Bera test
type Normality struct {
	Tested   bool    `json:"tested"`
	IsNormal bool    `json:"is_normal"`
	PValue   float64 `json:"p_value"`
}

// Strength labels for correlation and regression fits
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// CorrelationPair is the Pearson correlation of two columns
type CorrelationPair struct {
	ColumnA     string   `json:"column_a"`
	ColumnB     string   `json:"column_b"`
	Coefficient float64  `json:"coefficient"`
	Strength    Strength `json:"strength"`
	PValue      float64  `json:"p_value"`
	SampleSize  int      `json:"sample_size"`
}

// CorrelationMatrix is the symmetric matrix over Labels plus the ranked pairs
type CorrelationMatrix struct {
	Labels      []string          `json:"labels"`
	Matrix      [][]float64       `json:"matrix"`
	Pairs       []CorrelationPair `json:"pairs"`
	StrongPairs []CorrelationPair `json:"strong_pairs"`
}

// RegressionModel is an ordinary least squares fit of Target on Predictor
type RegressionModel struct {
	Predictor  string   `json:"predictor,omitempty"`
	Target     string   `json:"target,omitempty"`
	Slope      float64  `json:"slope"`
	Intercept  float64  `json:"intercept"`
	RSquared   float64  `json:"r_squared"`
	SampleSize int      `json:"sample_size"`
	Strength   Strength `json:"strength"`
}

// Predict evaluates the fitted line at x
func (m RegressionModel) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// ForecastMethod names a forecasting strategy
type ForecastMethod string

const (
	MethodLinear               ForecastMethod = "linear"
	MethodMovingAverage        ForecastMethod = "movingAverage"
	MethodExponentialSmoothing ForecastMethod = "exponentialSmoothing"
	MethodHoltWinters          ForecastMethod = "holtWinters"
)

// ForecastMethods lists every strategy in preference order for tie breaking
var ForecastMethods = []ForecastMethod{
	MethodLinear,
	MethodMovingAverage,
	MethodExponentialSmoothing,
	MethodHoltWinters,
}

// ForecastResult is one strategy's projection with its back-test accuracy
type ForecastResult struct {
	ID          core.ID            `json:"id"`
	Method      ForecastMethod     `json:"method"`
	Timestamps  []time.Time        `json:"timestamps"`
	Predictions []float64          `json:"predictions"`
	Lower       []float64          `json:"lower"`
	Upper       []float64          `json:"upper"`
	MAE         float64            `json:"mae"`
	RMSE        float64            `json:"rmse"`
	MAPE        float64            `json:"mape"`
	Description string             `json:"description"`
	Parameters  map[string]float64 `json:"parameters,omitempty"`
}

// ForecastComparison holds every strategy that could run for one series
type ForecastComparison struct {
	Horizon int                       `json:"horizon"`
	Results []ForecastResult          `json:"results"`
	Best    ForecastMethod            `json:"best"`
	Skipped map[ForecastMethod]string `json:"skipped,omitempty"`
}

// BestResult returns the primary forecast
func (c ForecastComparison) BestResult() (ForecastResult, bool) {
	for _, r := range c.Results {
		if r.Method == c.Best {
			return r, true
		}
	}
	return ForecastResult{}, false
}

// Severity tiers for anomalies
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// AnomalyRecord is one flagged observation
type AnomalyRecord struct {
	Index     int      `json:"index"`
	Value     float64  `json:"value"`
	Expected  float64  `json:"expected"`
	Deviation float64  `json:"deviation"` // z-score
	Severity  Severity `json:"severity"`
}

// AnomalyReport lists anomalies and the share of the series they represent
type AnomalyReport struct {
	Anomalies  []AnomalyRecord `json:"anomalies"`
	Percentage float64         `json:"percentage"`
	Mean       float64         `json:"mean"`
	StdDev     float64         `json:"std_dev"`
	Threshold  float64         `json:"threshold"`
}

// TrendDirection classifies the movement of a series
type TrendDirection string

const (
	TrendUpward   TrendDirection = "upward"
	TrendDownward TrendDirection = "downward"
	TrendStable   TrendDirection = "stable"
	TrendVolatile TrendDirection = "volatile"
)

// TrendProfile describes direction, strength and volatility of a series
type TrendProfile struct {
	Direction           TrendDirection `json:"direction"`
	Strength            float64        `json:"strength"`   // absolute % change between halves
	Volatility          float64        `json:"volatility"` // stdDev / |mean| * 100
	ChangePoints        []int          `json:"change_points"`
	Slope               float64        `json:"slope"`
	RSquared            float64        `json:"r_squared"`
	SeasonalityStrength float64        `json:"seasonality_strength"`
}

// QualityReport is the completeness of a dataset
type QualityReport struct {
	Completeness    float64        `json:"completeness"`
	TotalCells      int            `json:"total_cells"`
	MissingCells    int            `json:"missing_cells"`
	MissingByColumn map[string]int `json:"missing_by_column"`
}

// DatasetSummary is the overview of an uploaded table
type DatasetSummary struct {
	Rows               int                         `json:"rows"`
	Columns            int                         `json:"columns"`
	NumericColumns     []string                    `json:"numeric_columns"`
	CategoricalColumns []string                    `json:"categorical_columns"`
	TemporalColumns    []string                    `json:"temporal_columns"`
	Schema             dataset.Schema              `json:"schema"`
	MissingValues      map[string]int              `json:"missing_values"`
	BasicStats         map[string]DescriptiveStats `json:"basic_stats"`
}

// ClusterProfile is one k-means cluster described in the original units
type ClusterProfile struct {
	ID         int                `json:"id"`
	Size       int                `json:"size"`
	Percentage float64            `json:"percentage"`
	Means      map[string]float64 `json:"means"`
	VsOverall  map[string]float64 `json:"vs_overall"` // cluster mean minus dataset mean
}

// ElbowPoint is the within-cluster sum of squares for one k
type ElbowPoint struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

// ClusterAnalysis is a k-means segmentation of the rows over standardized features
type ClusterAnalysis struct {
	Features    []string         `json:"features"`
	K           int              `json:"k"`
	SampleSize  int              `json:"sample_size"`
	Inertia     float64          `json:"inertia"`
	Elbow       []ElbowPoint     `json:"elbow,omitempty"`
	Assignments []int            `json:"assignments"`
	Clusters    []ClusterProfile `json:"clusters"`
	Summary     string           `json:"summary"`
}

// TestKind names a group comparison test
type TestKind string

const (
	TestIndependentT TestKind = "independent_t"
	TestOneWayANOVA  TestKind = "one_way_anova"
)

// GroupSummary is the size and mean of one compared group
type GroupSummary struct {
	Name string  `json:"name"`
	Size int     `json:"size"`
	Mean float64 `json:"mean"`
}

// GroupTest compares the means of two or more groups of one measure
type GroupTest struct {
	Kind           TestKind       `json:"kind"`
	Column         string         `json:"column,omitempty"`
	GroupBy        string         `json:"group_by,omitempty"`
	Groups         []GroupSummary `json:"groups"`
	Statistic      float64        `json:"statistic"`
	DF1            float64        `json:"df1"`
	DF2            float64        `json:"df2,omitempty"` // denominator degrees of freedom, ANOVA only
	PValue         float64        `json:"p_value"`
	Significant    bool           `json:"significant"`
	Interpretation string         `json:"interpretation"`
}

// FeatureImportance is one predictor of a multiple regression
type FeatureImportance struct {
	Feature      string  `json:"feature"`
	Coefficient  float64 `json:"coefficient"`
	Standardized float64 `json:"standardized"` // coefficient in standard deviations of the target
	Importance   float64 `json:"importance"`   // share of the summed |standardized| coefficients
	Correlation  float64 `json:"correlation"`  // Pearson r with the target
}

// MultipleRegression is an ordinary least squares fit of Target on several features,
// with Features ranked by importance
type MultipleRegression struct {
	Target           string              `json:"target"`
	Features         []FeatureImportance `json:"features"`
	Intercept        float64             `json:"intercept"`
	RSquared         float64             `json:"r_squared"`
	AdjustedRSquared float64             `json:"adjusted_r_squared"`
	SampleSize       int                 `json:"sample_size"`
	Strength         Strength            `json:"strength"`
	TopDriver        string              `json:"top_driver"`
}

// Predict evaluates the fit at named feature values; absent features count as zero
func (m MultipleRegression) Predict(values map[string]float64) float64 {
	y := m.Intercept
	for _, f := range m.Features {
		y += f.Coefficient * values[f.Feature]
	}
	return y
}

// Bundle is everything computed for one dataset, consumed by the narrative,
// rendering and export collaborators
type Bundle struct {
	ID           core.ID                  `json:"id"`
	Name         string                   `json:"name,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	Summary      DatasetSummary           `json:"summary"`
	Quality      QualityReport            `json:"quality"`
	Correlations *CorrelationMatrix       `json:"correlations,omitempty"`
	Regressions  []RegressionModel        `json:"regressions,omitempty"`
	Trends       map[string]TrendProfile  `json:"trends,omitempty"`
	Anomalies    map[string]AnomalyReport `json:"anomalies,omitempty"`
	Forecast     *ForecastComparison      `json:"forecast,omitempty"`
	ForecastOf   string                   `json:"forecast_of,omitempty"`
	Clusters     *ClusterAnalysis         `json:"clusters,omitempty"`
	GroupTests   []GroupTest              `json:"group_tests,omitempty"`
	Drivers      *MultipleRegression      `json:"drivers,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
}
