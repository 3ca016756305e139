package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/StephenStolk/analyseX-sub001/adapters/llm/heuristic"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/ports"
)

const systemPrompt = "You are a careful data analyst. Explain statistical results in plain language for a business reader. Only use the figures you are given."

// Config holds LLM adapter configuration
type Config struct {
	Model       string        // e.g., "gpt-4.1-mini"
	APIKey      string        // OpenAI API key
	BaseURL     string        // Optional override (default: https://api.openai.com/v1)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // Max tokens in response
	Timeout     time.Duration // Request timeout
}

// Summarizer implements ports.Summarizer with a chat model and a template fallback
type Summarizer struct {
	config   Config
	client   ports.LLMClient
	fallback ports.Summarizer
	logger   *internal.Logger
}

// NewSummarizer creates an OpenAI-backed summarizer. A nil fallback uses the template summarizer.
func NewSummarizer(config Config, fallback ports.Summarizer) (*Summarizer, error) {
	client, err := newLLMClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewSummarizerWithClient(config, client, fallback), nil
}

// NewSummarizerWithClient wires an existing client, e.g. a MockLLMClient in tests
func NewSummarizerWithClient(config Config, client ports.LLMClient, fallback ports.Summarizer) *Summarizer {
	if fallback == nil {
		fallback = heuristic.NewSummarizer()
	}
	return &Summarizer{
		config:   config,
		client:   client,
		fallback: fallback,
		logger:   internal.DefaultLogger.WithField("component", "llm_summarizer"),
	}
}

// Summarize asks the model for a narrative and falls back to the template on any failure
func (s *Summarizer) Summarize(ctx context.Context, bundle *stats.Bundle) (string, error) {
	if bundle == nil {
		return "", fmt.Errorf("nil bundle")
	}

	resp, err := s.client.ChatCompletionWithUsage(ctx, s.config.Model, BuildPrompt(bundle), s.config.MaxTokens)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = fmt.Errorf("empty completion")
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn("narrative model failed, using template: %v", err)
		return s.fallback.Summarize(ctx, bundle)
	}

	if resp.Usage != nil {
		s.logger.WithFields(map[string]interface{}{
			"model":             resp.Usage.Model,
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		}).Debug("narrative generated")
	}
	return strings.TrimSpace(resp.Content), nil
}

// BuildPrompt lists the bundle's headline figures for the model
func BuildPrompt(bundle *stats.Bundle) string {
	var b strings.Builder
	sum := bundle.Summary

	b.WriteString("Write a short analysis (3-5 paragraphs, Markdown) of this dataset.\n\n")
	fmt.Fprintf(&b, "Rows: %d, columns: %d\n", sum.Rows, sum.Columns)
	fmt.Fprintf(&b, "Numeric columns: %s\n", strings.Join(sum.NumericColumns, ", "))
	if len(sum.CategoricalColumns) > 0 {
		fmt.Fprintf(&b, "Categorical columns: %s\n", strings.Join(sum.CategoricalColumns, ", "))
	}
	fmt.Fprintf(&b, "Completeness: %s\n", heuristic.FormatPercent(bundle.Quality.Completeness))

	for _, col := range sum.NumericColumns {
		d, ok := sum.BasicStats[col]
		if !ok || d.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: mean %s, median %s, std %s, min %s, max %s\n", col,
			heuristic.FormatNumber(d.Mean, 2), heuristic.FormatNumber(d.Median, 2),
			heuristic.FormatNumber(d.StdDev, 2), heuristic.FormatNumber(d.Min, 2), heuristic.FormatNumber(d.Max, 2))
	}

	if bundle.Correlations != nil && len(bundle.Correlations.StrongPairs) > 0 {
		b.WriteString("\nTop correlations:\n")
		for _, p := range bundle.Correlations.StrongPairs {
			fmt.Fprintf(&b, "- %s vs %s: r=%s (%s, p=%s)\n", p.ColumnA, p.ColumnB,
				heuristic.FormatNumber(p.Coefficient, 3), p.Strength, heuristic.FormatNumber(p.PValue, 4))
		}
	}

	for _, m := range bundle.Regressions {
		fmt.Fprintf(&b, "Regression %s on %s: slope %s, R² %s\n", m.Target, m.Predictor,
			heuristic.FormatNumber(m.Slope, 3), heuristic.FormatNumber(m.RSquared, 3))
	}

	if len(bundle.Trends) > 0 {
		b.WriteString("\nTrends:\n")
		for _, col := range sum.NumericColumns {
			if t, ok := bundle.Trends[col]; ok {
				fmt.Fprintf(&b, "- %s: %s (change %s, volatility %s)\n", col, t.Direction,
					heuristic.FormatPercent(t.Strength), heuristic.FormatPercent(t.Volatility))
			}
		}
	}

	for _, col := range sum.NumericColumns {
		if r, ok := bundle.Anomalies[col]; ok && len(r.Anomalies) > 0 {
			fmt.Fprintf(&b, "Anomalies in %s: %d (%s)\n", col, len(r.Anomalies), heuristic.FormatPercent(r.Percentage))
		}
	}

	if bundle.Forecast != nil {
		if best, ok := bundle.Forecast.BestResult(); ok {
			fmt.Fprintf(&b, "\nForecast of %s: best method %s (MAPE %s), next %d values: %s\n",
				bundle.ForecastOf, best.Method, heuristic.FormatPercent(best.MAPE), len(best.Predictions), joinNumbers(best.Predictions))
		}
	}
	return b.String()
}

func joinNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = heuristic.FormatNumber(v, 2)
	}
	return strings.Join(parts, ", ")
}
