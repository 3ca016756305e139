package analysis

import (
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// Table is the dataset view the quality scorer reads
type Table interface {
	Columns() []string
	Rows() []dataset.Row
	IsMissing(raw interface{}) bool
}

// DataQuality returns the percentage of present cells, 0 for an empty table
func DataQuality(t Table) float64 {
	return ScoreQuality(t).Completeness
}

// ScoreQuality counts missing cells overall and per column. An absent key counts as missing.
func ScoreQuality(t Table) stats.QualityReport {
	columns := t.Columns()
	rows := t.Rows()
	report := stats.QualityReport{MissingByColumn: make(map[string]int, len(columns))}
	for _, col := range columns {
		report.MissingByColumn[col] = 0
	}

	report.TotalCells = len(rows) * len(columns)
	if report.TotalCells == 0 {
		return report
	}

	for _, row := range rows {
		for _, col := range columns {
			raw, ok := row[col]
			if !ok || t.IsMissing(raw) {
				report.MissingCells++
				report.MissingByColumn[col]++
			}
		}
	}
	present := report.TotalCells - report.MissingCells
	report.Completeness = float64(present) / float64(report.TotalCells) * 100
	return report
}
