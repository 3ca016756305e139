package coercer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/datareadiness/ingestion"
)

// TypeCoercer handles deterministic coercion of raw cell values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold"`   // share of values that must parse as numbers
	TimestampThreshold float64  `json:"timestamp_threshold"` // share of values that must parse as dates
	MinYear            int      `json:"min_year"`
	MaxYear            int      `json:"max_year"`
	MissingSentinels   []string `json:"missing_sentinels"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		TimestampThreshold: 0.8,
		MinYear:            1900,
		MaxYear:            2100,
		MissingSentinels:   []string{"n/a"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Config returns the coercion rules in effect
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
}

// IsMissing reports whether a raw cell counts as absent: nil, NaN, blank or a sentinel such as "N/A"
func (c *TypeCoercer) IsMissing(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return true
		}
		for _, sentinel := range c.config.MissingSentinels {
			if strings.EqualFold(s, sentinel) {
				return true
			}
		}
	}
	return false
}

// CoerceNumeric converts native numbers and numeric strings to a finite float64
func (c *TypeCoercer) CoerceNumeric(raw interface{}) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		return c.parseNumericString(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseNumericString handles currency symbols, percent signs, parenthesised
// negatives and both US and European separators.
func (c *TypeCoercer) parseNumericString(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		if isThousandsGrouped(cleanVal) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// isThousandsGrouped reports whether every comma-separated group after the first has exactly three digits
func isThousandsGrouped(s string) bool {
	groups := strings.Split(strings.TrimPrefix(s, "-"), ",")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return isDigits(groups[0])
}

// CoerceTimestamp parses dates with a plausible year. Pure digit strings are never dates.
func (c *TypeCoercer) CoerceTimestamp(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, c.plausibleYear(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" || isDigits(s) {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, c.plausibleYear(t)
			}
		}
	}
	return time.Time{}, false
}

func (c *TypeCoercer) plausibleYear(t time.Time) bool {
	y := t.Year()
	return y >= c.config.MinYear && y <= c.config.MaxYear
}

// ValueKey returns a stable key for distinct-value counting
func (c *TypeCoercer) ValueKey(raw interface{}) string {
	if n, ok := c.CoerceNumeric(raw); ok {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	if t, ok := raw.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return strings.ToLower(strings.TrimSpace(c.toString(raw)))
}

// AnalyzeTypeDistribution counts how many non-missing values coerce to each type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []interface{}) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	distinct := make(map[string]struct{})

	for _, val := range values {
		if c.IsMissing(val) {
			continue
		}
		analysis.ValidCount++
		distinct[c.ValueKey(val)] = struct{}{}

		if _, ok := c.CoerceNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := c.CoerceTimestamp(val); ok {
			analysis.TimestampCount++
		}
	}

	analysis.DistinctCount = len(distinct)
	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
		analysis.DistinctRatio = float64(analysis.DistinctCount) / valid
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// toString converts interface{} to string safely
func (c *TypeCoercer) toString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// determineRecommendedType chooses the best storage type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) ingestion.ValueType {
	if analysis.ValidCount == 0 {
		return ingestion.ValueTypeMissing
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return ingestion.ValueTypeNumeric
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return ingestion.ValueTypeTimestamp
	}
	return ingestion.ValueTypeString
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                 `json:"total_count"`
	ValidCount      int                 `json:"valid_count"`
	NumericCount    int                 `json:"numeric_count"`
	TimestampCount  int                 `json:"timestamp_count"`
	DistinctCount   int                 `json:"distinct_count"`
	NumericRatio    float64             `json:"numeric_ratio"`
	TimestampRatio  float64             `json:"timestamp_ratio"`
	DistinctRatio   float64             `json:"distinct_ratio"`
	RecommendedType ingestion.ValueType `json:"recommended_type"`
}
