package forecast

import (
	"fmt"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// Seasonality selects how the seasonal index combines with level and trend
type Seasonality string

const (
	SeasonalityAdditive       Seasonality = "additive"
	SeasonalityMultiplicative Seasonality = "multiplicative"
)

// HoltWintersParams configures triple exponential smoothing
type HoltWintersParams struct {
	Alpha       float64     `json:"alpha"` // level
	Beta        float64     `json:"beta"`  // trend
	Gamma       float64     `json:"gamma"` // seasonal
	Period      int         `json:"period"`
	Seasonality Seasonality `json:"seasonality"`
}

// DefaultHoltWintersParams returns a monthly additive model
func DefaultHoltWintersParams() HoltWintersParams {
	return HoltWintersParams{
		Alpha:       0.3,
		Beta:        0.1,
		Gamma:       0.3,
		Period:      12,
		Seasonality: SeasonalityAdditive,
	}
}

func (p HoltWintersParams) withDefaults() HoltWintersParams {
	def := DefaultHoltWintersParams()
	if !validFactor(p.Alpha) {
		p.Alpha = def.Alpha
	}
	if !validFactor(p.Beta) {
		p.Beta = def.Beta
	}
	if !validFactor(p.Gamma) {
		p.Gamma = def.Gamma
	}
	if p.Period < 2 {
		p.Period = def.Period
	}
	if p.Seasonality != SeasonalityMultiplicative {
		p.Seasonality = SeasonalityAdditive
	}
	return p
}

// HoltWinters needs two full seasons. Level starts at the first season's mean, trend at
// the per-period change between the first two season means, and the seasonal indices at
// each first-season value's offset (additive) or ratio (multiplicative) to that level.
// Multiplicative seasonality falls back to additive when the series is not strictly positive.
func (e *Engine) HoltWinters(ts dataset.TimeSeries, horizon int, params HoltWintersParams) (*stats.ForecastResult, error) {
	params = params.withDefaults()
	p := params.Period
	values, err := prepare(ts, horizon, 2*p, "holt-winters forecast")
	if err != nil {
		return nil, err
	}

	multiplicative := params.Seasonality == SeasonalityMultiplicative
	if multiplicative {
		if minV, _ := mstats.Min(values); minV <= 0 {
			e.logger.Warn("multiplicative seasonality needs positive values, using additive")
			multiplicative = false
		}
	}

	n := len(values)
	first, _ := mstats.Mean(values[:p])
	second, _ := mstats.Mean(values[p : 2*p])
	level := first
	slope := (second - first) / float64(p)

	seasonal := make([]float64, p)
	for i := 0; i < p; i++ {
		if multiplicative {
			seasonal[i] = values[i] / level
		} else {
			seasonal[i] = values[i] - level
		}
	}

	fitted := make([]float64, 0, n-p)
	for t := p; t < n; t++ {
		v := values[t]
		s := seasonal[t%p]
		prevLevel := level
		if multiplicative {
			fitted = append(fitted, (level+slope)*s)
			level = params.Alpha*(v/s) + (1-params.Alpha)*(level+slope)
			slope = params.Beta*(level-prevLevel) + (1-params.Beta)*slope
			seasonal[t%p] = params.Gamma*(v/level) + (1-params.Gamma)*s
		} else {
			fitted = append(fitted, level+slope+s)
			level = params.Alpha*(v-s) + (1-params.Alpha)*(level+slope)
			slope = params.Beta*(level-prevLevel) + (1-params.Beta)*slope
			seasonal[t%p] = params.Gamma*(v-level) + (1-params.Gamma)*s
		}
	}

	predictions := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		base := level + float64(h)*slope
		s := seasonal[(n+h-1)%p]
		if multiplicative {
			predictions[h-1] = base * s
		} else {
			predictions[h-1] = base + s
		}
	}

	mode := SeasonalityAdditive
	multFlag := 0.0
	if multiplicative {
		mode = SeasonalityMultiplicative
		multFlag = 1
	}

	return e.finish(ts, fit{
		method:      stats.MethodHoltWinters,
		actual:      values[p:],
		fitted:      fitted,
		predictions: predictions,
		params: map[string]float64{
			"alpha":          params.Alpha,
			"beta":           params.Beta,
			"gamma":          params.Gamma,
			"period":         float64(p),
			"multiplicative": multFlag,
		},
		description: fmt.Sprintf("Holt-Winters %s seasonality over a %d-period cycle", mode, p),
	}), nil
}
