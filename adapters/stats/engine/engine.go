// Package engine computes pairwise correlations and least squares fits over
// the numeric columns of a dataset.
package engine

import (
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal"
)

// NumericSource is the dataset view the engine reads from
type NumericSource interface {
	NumericColumns() []string
	NumericPairs(x, y string) ([]float64, []float64, error)
}

// Thresholds classify an absolute coefficient as strong, moderate or weak.
// Values must be strictly greater than a bound to earn its label.
type Thresholds struct {
	Strong   float64 `json:"strong"`
	Moderate float64 `json:"moderate"`
}

// Classify labels an absolute coefficient
func (t Thresholds) Classify(abs float64) stats.Strength {
	switch {
	case abs > t.Strong:
		return stats.StrengthStrong
	case abs > t.Moderate:
		return stats.StrengthModerate
	default:
		return stats.StrengthWeak
	}
}

// Config bounds the correlation sweep and sets the label thresholds
type Config struct {
	MaxColumns  int        `json:"max_columns"` // columns considered, bounds the O(m^2) pair count
	TopPairs    int        `json:"top_pairs"`   // pairs reported as strong pairs
	Workers     int        `json:"workers"`     // concurrent pair computations
	Correlation Thresholds `json:"correlation"`
	Regression  Thresholds `json:"regression"` // applied to sqrt(R^2)
}

// DefaultConfig returns the product defaults
func DefaultConfig() Config {
	return Config{
		MaxColumns:  5,
		TopPairs:    10,
		Workers:     4,
		Correlation: Thresholds{Strong: 0.7, Moderate: 0.3},
		Regression:  Thresholds{Strong: 0.7, Moderate: 0.4},
	}
}

// StatsEngine provides correlation and regression computation
type StatsEngine struct {
	cfg    Config
	logger *internal.Logger
}

// NewStatsEngine creates a new statistical engine, filling unset limits from DefaultConfig
func NewStatsEngine(cfg Config) *StatsEngine {
	def := DefaultConfig()
	if cfg.MaxColumns <= 0 {
		cfg.MaxColumns = def.MaxColumns
	}
	if cfg.TopPairs <= 0 {
		cfg.TopPairs = def.TopPairs
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Correlation == (Thresholds{}) {
		cfg.Correlation = def.Correlation
	}
	if cfg.Regression == (Thresholds{}) {
		cfg.Regression = def.Regression
	}
	return &StatsEngine{cfg: cfg, logger: internal.DefaultLogger.WithField("component", "stats_engine")}
}

// Config returns the effective configuration
func (e *StatsEngine) Config() Config {
	return e.cfg
}

var defaultEngine = NewStatsEngine(DefaultConfig())
