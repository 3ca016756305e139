// Package analysis holds the series and table scorers: z-score anomaly detection,
// half-split trend classification and cell completeness.
package analysis

import (
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

const (
	// DefaultAnomalyThreshold is the |z| a value must exceed to be flagged
	DefaultAnomalyThreshold = 2.5
	// HighSeverityThreshold is the |z| above which an anomaly is high severity
	HighSeverityThreshold = 3.0
)

// DetectAnomalies flags values whose population z-score exceeds zThreshold in absolute
// value. Non-finite values are ignored but indices refer to the original series. A
// threshold of zero or less uses DefaultAnomalyThreshold.
func DetectAnomalies(series []float64, zThreshold float64) stats.AnomalyReport {
	if zThreshold <= 0 {
		zThreshold = DefaultAnomalyThreshold
	}
	report := stats.AnomalyReport{Anomalies: []stats.AnomalyRecord{}, Threshold: zThreshold}

	clean := finiteValues(series)
	if len(clean) == 0 {
		return report
	}
	report.Mean, _ = mstats.Mean(clean)
	report.StdDev, _ = mstats.StandardDeviationPopulation(clean)
	if report.StdDev == 0 {
		return report
	}

	for i, v := range series {
		if !isFinite(v) {
			continue
		}
		z := (v - report.Mean) / report.StdDev
		if math.Abs(z) <= zThreshold {
			continue
		}
		severity := stats.SeverityMedium
		if math.Abs(z) > HighSeverityThreshold {
			severity = stats.SeverityHigh
		}
		report.Anomalies = append(report.Anomalies, stats.AnomalyRecord{
			Index:     i,
			Value:     v,
			Expected:  report.Mean,
			Deviation: z,
			Severity:  severity,
		})
	}
	report.Percentage = float64(len(report.Anomalies)) / float64(len(clean)) * 100
	return report
}

func finiteValues(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
