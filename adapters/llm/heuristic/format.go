package heuristic

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// FormatNumber rounds half away from zero to the given places and drops trailing zeros.
// Non-finite values print as "n/a".
func FormatNumber(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).Round(places).String()
}

// FormatPercent formats a value already expressed in percent
func FormatPercent(v float64) string {
	return FormatNumber(v, 1) + "%"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
