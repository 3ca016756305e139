package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
)

// seriesOrigin anchors synthetic timestamps for series without a usable time column
var seriesOrigin = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxDayOffset bounds numeric time columns to roughly ±2700 years around the origin
const maxDayOffset = 1e6

// NumericSeries returns the finite numeric values of a column in row order, dropping missing cells
func (d *Dataset) NumericSeries(column string) ([]float64, error) {
	if !d.HasColumn(column) {
		return nil, core.NewColumnNotFoundError(column)
	}
	values := make([]float64, 0, len(d.rows))
	for _, row := range d.rows {
		if v, ok := d.coercer.CoerceNumeric(row[column]); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

// NumericPairs returns parallel values for two columns, keeping only rows where both are numeric
func (d *Dataset) NumericPairs(x, y string) ([]float64, []float64, error) {
	for _, col := range []string{x, y} {
		if !d.HasColumn(col) {
			return nil, nil, core.NewColumnNotFoundError(col)
		}
	}
	xs := make([]float64, 0, len(d.rows))
	ys := make([]float64, 0, len(d.rows))
	for _, row := range d.rows {
		xv, okX := d.coercer.CoerceNumeric(row[x])
		yv, okY := d.coercer.CoerceNumeric(row[y])
		if okX && okY {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys, nil
}

// NumericMatrix returns one row of values per dataset row where every column is numeric,
// in the order the columns are given
func (d *Dataset) NumericMatrix(columns []string) ([][]float64, error) {
	for _, col := range columns {
		if !d.HasColumn(col) {
			return nil, core.NewColumnNotFoundError(col)
		}
	}
	matrix := make([][]float64, 0, len(d.rows))
	for _, row := range d.rows {
		values := make([]float64, len(columns))
		complete := true
		for j, col := range columns {
			v, ok := d.coercer.CoerceNumeric(row[col])
			if !ok {
				complete = false
				break
			}
			values[j] = v
		}
		if complete {
			matrix = append(matrix, values)
		}
	}
	return matrix, nil
}

// GroupedSeries splits a numeric column by the levels of another, in first-seen order.
// Levels compare case-insensitively and rows missing either cell are skipped.
func (d *Dataset) GroupedSeries(groupColumn, valueColumn string) ([]dataset.Group, error) {
	for _, col := range []string{groupColumn, valueColumn} {
		if !d.HasColumn(col) {
			return nil, core.NewColumnNotFoundError(col)
		}
	}
	var groups []dataset.Group
	index := make(map[string]int)
	for _, row := range d.rows {
		raw := row[groupColumn]
		if d.coercer.IsMissing(raw) {
			continue
		}
		v, ok := d.coercer.CoerceNumeric(row[valueColumn])
		if !ok {
			continue
		}
		key := d.coercer.ValueKey(raw)
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, dataset.Group{Name: strings.TrimSpace(fmt.Sprint(raw))})
		}
		groups[i].Values = append(groups[i].Values, v)
	}
	return groups, nil
}

// TimeSeries pairs a time column with a numeric value column, sorted ascending by time.
// With an empty timeColumn the row order is used, one day per row. A numeric time
// column, such as a month number, is treated as a period index.
func (d *Dataset) TimeSeries(timeColumn, valueColumn string) (dataset.TimeSeries, error) {
	if !d.HasColumn(valueColumn) {
		return dataset.TimeSeries{}, core.NewColumnNotFoundError(valueColumn)
	}
	if timeColumn == "" {
		values, _ := d.NumericSeries(valueColumn)
		return dataset.NewIndexedSeries(seriesOrigin, values), nil
	}
	profile, err := d.Profile(timeColumn)
	if err != nil {
		return dataset.TimeSeries{}, err
	}

	points := make([]dataset.Point, 0, len(d.rows))
	for _, row := range d.rows {
		value, ok := d.coercer.CoerceNumeric(row[valueColumn])
		if !ok {
			continue
		}
		ts, ok := d.timestampOf(profile.Type, row[timeColumn])
		if !ok {
			continue
		}
		points = append(points, dataset.Point{Timestamp: ts, Value: value})
	}
	return dataset.NewTimeSeries(points), nil
}

func (d *Dataset) timestampOf(colType dataset.ColumnType, raw interface{}) (time.Time, bool) {
	if colType == dataset.TypeNumeric {
		idx, ok := d.coercer.CoerceNumeric(raw)
		if !ok || math.Abs(idx) > maxDayOffset {
			return time.Time{}, false
		}
		return seriesOrigin.AddDate(0, 0, int(idx)), true
	}
	return d.coercer.CoerceTimestamp(raw)
}
