// Package report renders an analysis bundle as Markdown and HTML for export.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/StephenStolk/analyseX-sub001/adapters/llm/heuristic"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const stylesheet = `body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;color:#222}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #ccc;padding:4px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}blockquote{color:#8a5300}`

// Markdown builds the report body: narrative first, then the tables behind it
func Markdown(bundle *stats.Bundle, narrative string) string {
	var b strings.Builder

	title := "Analysis report"
	if bundle.Name != "" {
		title += ": " + bundle.Name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !bundle.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", bundle.CreatedAt.Format("2006-01-02 15:04 MST"))
	}
	if narrative = strings.TrimSpace(narrative); narrative != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(narrative)
		b.WriteString("\n\n")
	}

	writeDescriptive(&b, bundle.Summary)
	writeCorrelations(&b, bundle.Correlations)
	writeRegressions(&b, bundle.Regressions)
	writeDrivers(&b, bundle.Drivers)
	writeForecast(&b, bundle.ForecastOf, bundle.Forecast)
	writeClusters(&b, bundle.Clusters)
	writeGroupTests(&b, bundle.GroupTests)

	fmt.Fprintf(&b, "## Data quality\n\nCompleteness: %s (%d of %d cells missing)\n",
		heuristic.FormatPercent(bundle.Quality.Completeness), bundle.Quality.MissingCells, bundle.Quality.TotalCells)
	for _, w := range bundle.Warnings {
		fmt.Fprintf(&b, "\n> %s\n", w)
	}
	return b.String()
}

// RenderHTML renders the report as a standalone HTML page. Raw HTML in names, columns
// or the narrative is dropped and only safe link protocols are linked.
func RenderHTML(bundle *stats.Bundle, narrative string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(Markdown(bundle, narrative)))

	title := "Analysis report"
	if bundle.Name != "" {
		title += " - " + bundle.Name
	}
	// smartypants copies tags in the title verbatim, so escape it first
	var escaped bytes.Buffer
	html.EscapeHTML(&escaped, []byte(title))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank | html.SkipHTML | html.Safelink,
		Title: escaped.String(),
		Head:  []byte("<style>" + stylesheet + "</style>\n"),
	})
	return markdown.Render(doc, renderer)
}

func writeDescriptive(b *strings.Builder, summary stats.DatasetSummary) {
	if len(summary.BasicStats) == 0 {
		return
	}
	b.WriteString("## Descriptive statistics\n\n")
	b.WriteString("| Column | Count | Mean | Median | Std dev | Min | Max | Outliers |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, col := range summary.NumericColumns {
		d, ok := summary.BasicStats[col]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %d |\n", cell(col), d.Count,
			num(d.Mean), num(d.Median), num(d.StdDev), num(d.Min), num(d.Max), len(d.Outliers))
	}
	b.WriteString("\n")
}

func writeCorrelations(b *strings.Builder, m *stats.CorrelationMatrix) {
	if m == nil || len(m.StrongPairs) == 0 {
		return
	}
	b.WriteString("## Correlations\n\n")
	b.WriteString("| Pair | r | Strength | p-value | n |\n|---|---:|---|---:|---:|\n")
	for _, p := range m.StrongPairs {
		fmt.Fprintf(b, "| %s / %s | %s | %s | %s | %d |\n", cell(p.ColumnA), cell(p.ColumnB),
			heuristic.FormatNumber(p.Coefficient, 3), p.Strength, heuristic.FormatNumber(p.PValue, 4), p.SampleSize)
	}
	b.WriteString("\n")
}

func writeRegressions(b *strings.Builder, models []stats.RegressionModel) {
	if len(models) == 0 {
		return
	}
	b.WriteString("## Regressions\n\n")
	b.WriteString("| Target ~ Predictor | Slope | Intercept | R² | Strength |\n|---|---:|---:|---:|---|\n")
	for _, m := range models {
		fmt.Fprintf(b, "| %s ~ %s | %s | %s | %s | %s |\n", cell(m.Target), cell(m.Predictor),
			heuristic.FormatNumber(m.Slope, 4), num(m.Intercept), heuristic.FormatNumber(m.RSquared, 3), m.Strength)
	}
	b.WriteString("\n")
}

func writeDrivers(b *strings.Builder, m *stats.MultipleRegression) {
	if m == nil {
		return
	}
	fmt.Fprintf(b, "## Drivers of %s\n\nR² %s over %d rows.\n\n", m.Target, heuristic.FormatNumber(m.RSquared, 3), m.SampleSize)
	b.WriteString("| Feature | Coefficient | Importance | r |\n|---|---:|---:|---:|\n")
	for _, f := range m.Features {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", cell(f.Feature), heuristic.FormatNumber(f.Coefficient, 4),
			heuristic.FormatPercent(f.Importance*100), heuristic.FormatNumber(f.Correlation, 3))
	}
	b.WriteString("\n")
}

func writeClusters(b *strings.Builder, c *stats.ClusterAnalysis) {
	if c == nil || len(c.Clusters) == 0 {
		return
	}
	fmt.Fprintf(b, "## Segments\n\n%s.\n\n| Segment | Size | Share |", c.Summary)
	for _, f := range c.Features {
		fmt.Fprintf(b, " %s vs mean |", cell(f))
	}
	b.WriteString("\n|---|---:|---:|" + strings.Repeat("---:|", len(c.Features)) + "\n")
	for _, cl := range c.Clusters {
		fmt.Fprintf(b, "| %d | %d | %s |", cl.ID+1, cl.Size, heuristic.FormatPercent(cl.Percentage))
		for _, f := range c.Features {
			fmt.Fprintf(b, " %s |", num(cl.VsOverall[f]))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeGroupTests(b *strings.Builder, tests []stats.GroupTest) {
	if len(tests) == 0 {
		return
	}
	b.WriteString("## Group comparisons\n\n| Measure | Groups | Test | Statistic | p-value | Significant |\n|---|---|---|---:|---:|---|\n")
	for _, t := range tests {
		groups := t.GroupBy
		if groups == "" {
			names := make([]string, len(t.Groups))
			for i, g := range t.Groups {
				names[i] = g.Name
			}
			groups = strings.Join(names, ", ")
		}
		significant := "no"
		if t.Significant {
			significant = "yes"
		}
		statistic := heuristic.FormatNumber(t.Statistic, 3)
		if math.Abs(t.Statistic) == math.MaxFloat64 {
			statistic = "unbounded"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n", cell(t.Column), cell(groups), t.Kind,
			statistic, heuristic.FormatNumber(t.PValue, 4), significant)
	}
	b.WriteString("\n")
}

func writeForecast(b *strings.Builder, column string, cmp *stats.ForecastComparison) {
	if cmp == nil {
		return
	}
	best, ok := cmp.BestResult()
	if !ok {
		return
	}
	fmt.Fprintf(b, "## Forecast: %s\n\n", column)
	b.WriteString("| Method | MAE | RMSE | MAPE |\n|---|---:|---:|---:|\n")
	for _, r := range cmp.Results {
		name := string(r.Method)
		if r.Method == cmp.Best {
			name = "**" + name + "**"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", name, num(r.MAE), num(r.RMSE), heuristic.FormatPercent(r.MAPE))
	}
	b.WriteString("\n| Period | Forecast | Lower | Upper |\n|---|---:|---:|---:|\n")
	for i, v := range best.Predictions {
		period := fmt.Sprintf("+%d", i+1)
		if i < len(best.Timestamps) {
			period = best.Timestamps[i].Format("2006-01-02")
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", period, num(v), num(at(best.Lower, i)), num(at(best.Upper, i)))
	}
	b.WriteString("\n")
}

func num(v float64) string {
	return heuristic.FormatNumber(v, 2)
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
