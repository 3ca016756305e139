package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// maxDesignCondition is the largest condition number of the standardized design accepted
// before features are reported as collinear
const maxDesignCondition = 1e10

// MatrixSource is the dataset view the multiple regression reads from
type MatrixSource interface {
	NumericColumns() []string
	NumericMatrix(columns []string) ([][]float64, error)
}

// FitMultiple regresses y on every column of x with the default thresholds
func FitMultiple(features []string, x [][]float64, y []float64) (*stats.MultipleRegression, error) {
	return defaultEngine.FitMultiple(features, x, y)
}

// FitMultiple is ordinary least squares of y on the feature columns of x, solved through a
// QR factorization. Features are ranked by their share of the absolute standardized
// coefficients. It needs more rows than coefficients and a full-rank design.
func (e *StatsEngine) FitMultiple(features []string, x [][]float64, y []float64) (*stats.MultipleRegression, error) {
	n, p := len(x), len(features)
	if p == 0 {
		return nil, core.NewInsufficientDataError("regression features", 1, 0)
	}
	if len(y) != n {
		return nil, fmt.Errorf("regression has %d rows of features but %d targets", n, len(y))
	}
	if n <= p+1 {
		return nil, core.NewInsufficientDataError("multiple regression", p+2, n)
	}

	// solve on z-scored features so the conditioning check does not depend on units
	means := make([]float64, p)
	devs := make([]float64, p)
	column := make([]float64, n)
	for j := 0; j < p; j++ {
		for i, row := range x {
			column[i] = row[j]
		}
		means[j], devs[j] = gstat.PopMeanStdDev(column, nil)
		if devs[j] == 0 {
			return nil, fmt.Errorf("%w: %s is constant", core.ErrCollinearFeatures, features[j])
		}
	}
	design := mat.NewDense(n, p+1, nil)
	for i, row := range x {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, (row[j]-means[j])/devs[j])
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, target); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCollinearFeatures, err)
	}
	if qr.Cond() > maxDesignCondition {
		return nil, fmt.Errorf("%w: condition number %.3g", core.ErrCollinearFeatures, qr.Cond())
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	meanY, sdY := gstat.PopMeanStdDev(y, nil)
	ssRes, ssTot := 0.0, 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssRes += r * r
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}

	model := &stats.MultipleRegression{
		SampleSize: n,
		Features:   make([]stats.FeatureImportance, p),
	}
	if ssTot > 0 {
		model.RSquared = math.Max(0, math.Min(1, 1-ssRes/ssTot))
		model.AdjustedRSquared = 1 - (1-model.RSquared)*float64(n-1)/float64(n-p-1)
	}
	model.Strength = e.cfg.Regression.Classify(math.Sqrt(model.RSquared))

	model.Intercept = beta.AtVec(0)
	totalImpact := 0.0
	for j, name := range features {
		zCoef := beta.AtVec(j + 1)
		fi := stats.FeatureImportance{Feature: name, Coefficient: zCoef / devs[j]}
		model.Intercept -= fi.Coefficient * means[j]
		if sdY > 0 {
			fi.Standardized = zCoef / sdY
			for i, row := range x {
				column[i] = row[j]
			}
			fi.Correlation = Pearson(column, y)
		}
		totalImpact += math.Abs(fi.Standardized)
		model.Features[j] = fi
	}
	for j := range model.Features {
		if totalImpact > 0 {
			model.Features[j].Importance = math.Abs(model.Features[j].Standardized) / totalImpact
		}
	}
	sort.SliceStable(model.Features, func(a, b int) bool {
		return model.Features[a].Importance > model.Features[b].Importance
	})
	model.TopDriver = model.Features[0].Feature
	return model, nil
}

// FitDrivers regresses target on the given features, or on every other numeric column
// when features is empty, using rows where all of them are numeric. An empty target
// uses the last numeric column.
func (e *StatsEngine) FitDrivers(ds MatrixSource, target string, features []string) (*stats.MultipleRegression, error) {
	numeric := ds.NumericColumns()
	if target == "" {
		if len(numeric) == 0 {
			return nil, core.NewInsufficientDataError("regression target", 1, 0)
		}
		target = numeric[len(numeric)-1]
	}
	if len(features) == 0 {
		for _, col := range numeric {
			if col != target && len(features) < e.cfg.MaxColumns {
				features = append(features, col)
			}
		}
	}

	matrix, err := ds.NumericMatrix(append([]string{target}, features...))
	if err != nil {
		return nil, fmt.Errorf("drivers of %s: %w", target, err)
	}
	x := make([][]float64, len(matrix))
	y := make([]float64, len(matrix))
	for i, row := range matrix {
		y[i] = row[0]
		x[i] = row[1:]
	}
	model, err := e.FitMultiple(features, x, y)
	if err != nil {
		return nil, fmt.Errorf("drivers of %s: %w", target, err)
	}
	model.Target = target
	return model, nil
}
