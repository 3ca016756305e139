package dataset

import (
	"sort"
	"time"
)

// Row is one record of an uploaded table, keyed by column name.
// Values are numbers, strings, time.Time, bool, or nil.
type Row map[string]interface{}

// ColumnType is the inferred statistical kind of a column
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeOrdinal     ColumnType = "ordinal"
	TypeTemporal    ColumnType = "temporal"
	TypeText        ColumnType = "text"
)

// IsQuantitative reports whether the column can feed numeric statistics
func (t ColumnType) IsQuantitative() bool {
	return t == TypeNumeric
}

// ColumnProfile describes one column as inferred from the dataset
type ColumnProfile struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Present  int        `json:"present"`  // values valid for Type
	Missing  int        `json:"missing"`  // absent, blank or not coercible to Type
	Distinct int        `json:"distinct"` // distinct valid values
	Levels   []string   `json:"levels,omitempty"`
}

// Schema holds the column profiles in column order
type Schema struct {
	Columns []ColumnProfile `json:"columns"`
}

// Lookup returns the profile for a column
func (s Schema) Lookup(name string) (ColumnProfile, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnProfile{}, false
}

// ColumnsOfType returns the names of columns with the given type, in column order
func (s Schema) ColumnsOfType(t ColumnType) []string {
	var names []string
	for _, col := range s.Columns {
		if col.Type == t {
			names = append(names, col.Name)
		}
	}
	return names
}

// Point is one observation of a time series
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TimeSeries is an ascending-by-time sequence of observations.
// Duplicate timestamps are kept.
type TimeSeries struct {
	Points []Point `json:"points"`
}

// NewTimeSeries sorts a copy of the points by timestamp, keeping the order of equal timestamps
func NewTimeSeries(points []Point) TimeSeries {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return TimeSeries{Points: sorted}
}

// NewIndexedSeries builds a series from bare values, one period per day starting at start
func NewIndexedSeries(start time.Time, values []float64) TimeSeries {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Timestamp: start.AddDate(0, 0, i), Value: v}
	}
	return TimeSeries{Points: points}
}

// Len returns the number of observations
func (ts TimeSeries) Len() int {
	return len(ts.Points)
}

// Values returns the observed values in time order
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		values[i] = p.Value
	}
	return values
}

// Timestamps returns the observation times in order
func (ts TimeSeries) Timestamps() []time.Time {
	times := make([]time.Time, len(ts.Points))
	for i, p := range ts.Points {
		times[i] = p.Timestamp
	}
	return times
}

// Group is a named sample of numeric values, such as one level of a categorical column
type Group struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}
