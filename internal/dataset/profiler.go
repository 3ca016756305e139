package dataset

import (
	"strings"
	"unicode"

	"github.com/StephenStolk/analyseX-sub001/domain/datareadiness/ingestion"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
)

var dateKeywords = []string{
	"date", "time", "month", "year", "day", "week", "quarter", "period", "timestamp", "created", "updated",
}

var identifierTokens = map[string]bool{
	"id": true, "count": true, "number": true, "num": true, "no": true,
	"qty": true, "quantity": true, "code": true, "index": true, "idx": true,
}

// ordinalScales are checked in order; the first scale covering every sampled value wins
var ordinalScales = [][]string{
	{"very low", "low", "medium", "high", "very high"},
	{"poor", "fair", "good", "very good", "excellent"},
	{"extra small", "small", "medium", "large", "extra large"},
	{"strongly disagree", "disagree", "neutral", "agree", "strongly agree"},
	{"never", "rarely", "sometimes", "often", "always"},
	{"beginner", "intermediate", "advanced", "expert"},
	{"bronze", "silver", "gold", "platinum"},
}

type profiler struct {
	ds *Dataset
}

func newProfiler(ds *Dataset) *profiler {
	return &profiler{ds: ds}
}

func (p *profiler) inferSchema() dataset.Schema {
	schema := dataset.Schema{Columns: make([]dataset.ColumnProfile, 0, len(p.ds.columns))}
	for _, col := range p.ds.columns {
		schema.Columns = append(schema.Columns, p.profileColumn(col))
	}
	return schema
}

func (p *profiler) sample(column string) []interface{} {
	n := len(p.ds.rows)
	if n > p.ds.options.SampleSize {
		n = p.ds.options.SampleSize
	}
	values := make([]interface{}, 0, n)
	for _, row := range p.ds.rows[:n] {
		values = append(values, row[column])
	}
	return values
}

func (p *profiler) profileColumn(column string) dataset.ColumnProfile {
	colType, levels := p.inferType(column, p.sample(column))

	profile := dataset.ColumnProfile{Name: column, Type: colType, Levels: levels}
	distinct := make(map[string]struct{})
	for _, row := range p.ds.rows {
		raw := row[column]
		if !p.isValid(colType, raw) {
			profile.Missing++
			continue
		}
		profile.Present++
		distinct[p.ds.coercer.ValueKey(raw)] = struct{}{}
	}
	profile.Distinct = len(distinct)
	return profile
}

func (p *profiler) isValid(colType dataset.ColumnType, raw interface{}) bool {
	c := p.ds.coercer
	switch colType {
	case dataset.TypeNumeric:
		_, ok := c.CoerceNumeric(raw)
		return ok
	case dataset.TypeTemporal:
		_, ok := c.CoerceTimestamp(raw)
		return ok
	default:
		return !c.IsMissing(raw)
	}
}

// inferType applies the fixed priority numeric, temporal, ordinal/categorical, text
func (p *profiler) inferType(column string, sample []interface{}) (dataset.ColumnType, []string) {
	analysis := p.ds.coercer.AnalyzeTypeDistribution(sample)

	switch analysis.RecommendedType {
	case ingestion.ValueTypeMissing:
		return dataset.TypeText, nil
	case ingestion.ValueTypeNumeric:
		return dataset.TypeNumeric, nil
	}

	if analysis.TimestampRatio >= p.ds.options.Coercion.TimestampThreshold && isDateLikeName(column) {
		return dataset.TypeTemporal, nil
	}

	if analysis.DistinctCount >= 2 {
		if levels := p.matchOrdinalScale(sample); levels != nil {
			return dataset.TypeOrdinal, levels
		}
	}

	if analysis.DistinctRatio <= p.ds.options.CategoricalRatio {
		return dataset.TypeCategorical, nil
	}
	return dataset.TypeText, nil
}

// isDateLikeName requires a date keyword and rejects identifier or count style names
func isDateLikeName(column string) bool {
	lower := strings.ToLower(column)
	for _, token := range nameTokens(lower) {
		if identifierTokens[token] {
			return false
		}
	}
	for _, kw := range dateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func nameTokens(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (p *profiler) matchOrdinalScale(sample []interface{}) []string {
	seen := make(map[string]bool)
	for _, raw := range sample {
		if p.ds.coercer.IsMissing(raw) {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil
		}
		seen[strings.ToLower(strings.Join(strings.Fields(s), " "))] = true
	}
	if len(seen) == 0 {
		return nil
	}

	for _, scale := range ordinalScales {
		covered := 0
		for _, level := range scale {
			if seen[level] {
				covered++
			}
		}
		if covered == len(seen) {
			levels := make([]string, 0, covered)
			for _, level := range scale {
				if seen[level] {
					levels = append(levels, level)
				}
			}
			return levels
		}
	}
	return nil
}
