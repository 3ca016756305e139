package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// Summarizer writes a deterministic narrative from a bundle without any model call
type Summarizer struct {
	// MaxPairs caps the correlations mentioned
	MaxPairs int
}

// NewSummarizer creates a template summarizer mentioning at most three correlations
func NewSummarizer() *Summarizer {
	return &Summarizer{MaxPairs: 3}
}

// Summarize renders the bundle as a few Markdown paragraphs
func (s *Summarizer) Summarize(ctx context.Context, bundle *stats.Bundle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if bundle == nil {
		return "", fmt.Errorf("nil bundle")
	}

	var b strings.Builder
	sum := bundle.Summary
	fmt.Fprintf(&b, "The dataset has %d rows and %d columns (%d numeric, %d categorical, %d temporal). ",
		sum.Rows, sum.Columns, len(sum.NumericColumns), len(sum.CategoricalColumns), len(sum.TemporalColumns))
	fmt.Fprintf(&b, "Data completeness is %s.\n", FormatPercent(bundle.Quality.Completeness))

	s.writeCorrelations(&b, bundle.Correlations)
	writeTrends(&b, bundle.Trends)
	writeAnomalies(&b, bundle.Anomalies)
	writeForecast(&b, bundle.ForecastOf, bundle.Forecast)
	writeFindings(&b, bundle)

	for _, w := range bundle.Warnings {
		fmt.Fprintf(&b, "\n> Note: %s\n", w)
	}
	return strings.TrimSpace(b.String()), nil
}

func (s *Summarizer) writeCorrelations(b *strings.Builder, m *stats.CorrelationMatrix) {
	if m == nil || len(m.StrongPairs) == 0 {
		return
	}
	limit := s.MaxPairs
	if limit <= 0 || limit > len(m.StrongPairs) {
		limit = len(m.StrongPairs)
	}
	b.WriteString("\n## Relationships\n\n")
	for _, p := range m.StrongPairs[:limit] {
		direction := "positive"
		if p.Coefficient < 0 {
			direction = "negative"
		}
		fmt.Fprintf(b, "- %s and %s: %s %s correlation (r = %s, n = %d)\n",
			p.ColumnA, p.ColumnB, p.Strength, direction, FormatNumber(p.Coefficient, 2), p.SampleSize)
	}
}

func writeTrends(b *strings.Builder, trends map[string]stats.TrendProfile) {
	if len(trends) == 0 {
		return
	}
	b.WriteString("\n## Trends\n\n")
	for _, col := range sortedKeys(trends) {
		t := trends[col]
		switch t.Direction {
		case stats.TrendUpward, stats.TrendDownward:
			fmt.Fprintf(b, "- %s is trending %s (%s change between halves)\n", col, t.Direction, FormatPercent(t.Strength))
		case stats.TrendVolatile:
			fmt.Fprintf(b, "- %s is volatile (variation %s)\n", col, FormatPercent(t.Volatility))
		default:
			fmt.Fprintf(b, "- %s is stable\n", col)
		}
	}
}

func writeAnomalies(b *strings.Builder, reports map[string]stats.AnomalyReport) {
	var lines []string
	for _, col := range sortedKeys(reports) {
		r := reports[col]
		if len(r.Anomalies) == 0 {
			continue
		}
		high := 0
		for _, a := range r.Anomalies {
			if a.Severity == stats.SeverityHigh {
				high++
			}
		}
		lines = append(lines, fmt.Sprintf("- %s: %d unusual values (%s of observations, %d high severity)",
			col, len(r.Anomalies), FormatPercent(r.Percentage), high))
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n## Anomalies\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

func writeForecast(b *strings.Builder, column string, cmp *stats.ForecastComparison) {
	if cmp == nil {
		return
	}
	best, ok := cmp.BestResult()
	if !ok || len(best.Predictions) == 0 {
		return
	}
	b.WriteString("\n## Forecast\n\n")
	last := len(best.Predictions) - 1
	fmt.Fprintf(b, "The %s method fits %s best (MAPE %s) and projects %s after %d periods",
		best.Method, column, FormatPercent(best.MAPE), FormatNumber(best.Predictions[last], 2), cmp.Horizon)
	if len(best.Lower) > last && len(best.Upper) > last {
		fmt.Fprintf(b, ", with a likely range of %s to %s", FormatNumber(best.Lower[last], 2), FormatNumber(best.Upper[last], 2))
	}
	b.WriteString(".\n")
}

// writeFindings covers the driver analysis, the segmentation and significant group differences
func writeFindings(b *strings.Builder, bundle *stats.Bundle) {
	var lines []string
	if d := bundle.Drivers; d != nil && d.TopDriver != "" {
		lines = append(lines, fmt.Sprintf("- %s is the strongest driver of %s (%s of the explained effect, R² %s)",
			d.TopDriver, d.Target, FormatPercent(d.Features[0].Importance*100), FormatNumber(d.RSquared, 2)))
	}
	if c := bundle.Clusters; c != nil && c.K > 0 {
		lines = append(lines, fmt.Sprintf("- The rows fall into %d segments over %s", c.K, strings.Join(c.Features, ", ")))
	}
	for _, t := range bundle.GroupTests {
		if t.Significant {
			lines = append(lines, fmt.Sprintf("- %s differs across %s (p = %s)", t.Column, t.GroupBy, FormatNumber(t.PValue, 3)))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n## Key findings\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}
