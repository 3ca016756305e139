package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/analysis/brief"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// minPairRows is the smallest parallel sample a coefficient is reported for
const minPairRows = 3

// Pearson returns the product-moment correlation of two equal-length series.
// Degenerate input (mismatched lengths, fewer than two points, a constant side) yields 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r, err := mstats.Correlation(x, y)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// CorrelationMatrix runs the default engine without cancellation
func CorrelationMatrix(ds NumericSource, columns []string) (*stats.CorrelationMatrix, error) {
	return defaultEngine.CorrelationMatrix(context.Background(), ds, columns)
}

type pairJob struct {
	i, j int
}

type pairOutcome struct {
	pair     stats.CorrelationPair
	reported bool
}

// CorrelationMatrix correlates every unordered pair of the given columns, or of all
// numeric columns when none are given, capped to MaxColumns. Pairs are ranked by |r|.
func (e *StatsEngine) CorrelationMatrix(ctx context.Context, ds NumericSource, columns []string) (*stats.CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = ds.NumericColumns()
	}
	if len(columns) > e.cfg.MaxColumns {
		e.logger.Debug("capping correlation columns from %d to %d", len(columns), e.cfg.MaxColumns)
		columns = columns[:e.cfg.MaxColumns]
	}

	m := len(columns)
	result := &stats.CorrelationMatrix{
		Labels:      append([]string(nil), columns...),
		Matrix:      make([][]float64, m),
		Pairs:       []stats.CorrelationPair{},
		StrongPairs: []stats.CorrelationPair{},
	}
	for i := range result.Matrix {
		result.Matrix[i] = make([]float64, m)
		result.Matrix[i][i] = 1
	}

	var jobs []pairJob
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			jobs = append(jobs, pairJob{i: i, j: j})
		}
	}
	outcomes := make([]pairOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for idx, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x, y, err := ds.NumericPairs(columns[job.i], columns[job.j])
			if err != nil {
				return fmt.Errorf("correlate %s/%s: %w", columns[job.i], columns[job.j], err)
			}
			outcomes[idx] = e.correlatePair(columns[job.i], columns[job.j], x, y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for idx, job := range jobs {
		out := outcomes[idx]
		if !out.reported {
			continue
		}
		result.Matrix[job.i][job.j] = out.pair.Coefficient
		result.Matrix[job.j][job.i] = out.pair.Coefficient
		result.Pairs = append(result.Pairs, out.pair)
	}

	sort.SliceStable(result.Pairs, func(a, b int) bool {
		return math.Abs(result.Pairs[a].Coefficient) > math.Abs(result.Pairs[b].Coefficient)
	})
	top := e.cfg.TopPairs
	if top > len(result.Pairs) {
		top = len(result.Pairs)
	}
	result.StrongPairs = append(result.StrongPairs, result.Pairs[:top]...)

	e.logger.Debug("correlated %d columns into %d pairs", m, len(result.Pairs))
	return result, nil
}

func (e *StatsEngine) correlatePair(a, b string, x, y []float64) pairOutcome {
	n := len(x)
	if n < minPairRows {
		return pairOutcome{}
	}
	r := Pearson(x, y)
	return pairOutcome{
		reported: true,
		pair: stats.CorrelationPair{
			ColumnA:     a,
			ColumnB:     b,
			Coefficient: r,
			Strength:    e.cfg.Correlation.Classify(math.Abs(r)),
			PValue:      brief.CorrelationPValue(r, n),
			SampleSize:  n,
		},
	}
}
