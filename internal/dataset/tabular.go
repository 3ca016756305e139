// Package dataset turns raw uploaded rows into a typed, profiled table and
// extracts the numeric and time series views consumed by the analysis packages.
//
// A Dataset is immutable once built: the schema is inferred a single time in New
// and every accessor reads from that snapshot. Callers must not mutate the row
// maps they hand over.
package dataset

import (
	"sort"

	"github.com/StephenStolk/analyseX-sub001/adapters/datareadiness/coercer"
	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
)

// Options controls schema inference
type Options struct {
	SampleSize       int                    `json:"sample_size"`       // leading rows inspected for type inference
	CategoricalRatio float64                `json:"categorical_ratio"` // max distinct/non-empty ratio for categorical columns
	Coercion         coercer.CoercionConfig `json:"coercion"`
}

// DefaultOptions returns the inference settings used by the product
func DefaultOptions() Options {
	return Options{
		SampleSize:       20,
		CategoricalRatio: 0.5,
		Coercion:         coercer.DefaultCoercionConfig(),
	}
}

// Dataset is an ordered table of rows with an inferred schema
type Dataset struct {
	columns []string
	rows    []dataset.Row
	schema  dataset.Schema
	coercer *coercer.TypeCoercer
	options Options
}

// New builds a dataset, deriving the column order from first appearance.
// Keys first seen in the same row are ordered alphabetically.
func New(rows []dataset.Row, opts ...Options) *Dataset {
	return NewWithColumns(deriveColumns(rows), rows, opts...)
}

// NewWithColumns builds a dataset with an explicit column order, such as a file header
func NewWithColumns(columns []string, rows []dataset.Row, opts ...Options) *Dataset {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.SampleSize <= 0 {
		opt.SampleSize = DefaultOptions().SampleSize
	}

	ds := &Dataset{
		columns: append([]string(nil), columns...),
		rows:    append([]dataset.Row(nil), rows...),
		coercer: coercer.NewTypeCoercer(opt.Coercion),
		options: opt,
	}
	ds.schema = newProfiler(ds).inferSchema()
	return ds
}

func deriveColumns(rows []dataset.Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		var fresh []string
		for key := range row {
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, key)
			}
		}
		sort.Strings(fresh)
		columns = append(columns, fresh...)
	}
	return columns
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	return len(d.rows)
}

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int {
	return len(d.columns)
}

// Columns returns the column names in order
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Rows exposes the underlying rows for read-only iteration
func (d *Dataset) Rows() []dataset.Row {
	return d.rows
}

// Schema returns the inferred schema
func (d *Dataset) Schema() dataset.Schema {
	return d.schema
}

// IsEmpty reports whether the dataset has no rows
func (d *Dataset) IsEmpty() bool {
	return len(d.rows) == 0
}

// IsMissing reports whether a raw cell counts as missing
func (d *Dataset) IsMissing(raw interface{}) bool {
	return d.coercer.IsMissing(raw)
}

// HasColumn reports whether the column exists
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.columns {
		if col == name {
			return true
		}
	}
	return false
}

// Profile returns the inferred profile of one column
func (d *Dataset) Profile(column string) (dataset.ColumnProfile, error) {
	if d.IsEmpty() {
		return dataset.ColumnProfile{}, core.NewInsufficientDataError("profile column "+column, 1, 0)
	}
	profile, ok := d.schema.Lookup(column)
	if !ok {
		return dataset.ColumnProfile{}, core.NewColumnNotFoundError(column)
	}
	return profile, nil
}

// NumericColumns returns the numeric column names in column order
func (d *Dataset) NumericColumns() []string {
	return d.schema.ColumnsOfType(dataset.TypeNumeric)
}

// CategoricalColumns returns categorical and ordinal column names in column order
func (d *Dataset) CategoricalColumns() []string {
	var names []string
	for _, col := range d.schema.Columns {
		if col.Type == dataset.TypeCategorical || col.Type == dataset.TypeOrdinal {
			names = append(names, col.Name)
		}
	}
	return names
}

// TemporalColumns returns the temporal column names in column order
func (d *Dataset) TemporalColumns() []string {
	return d.schema.ColumnsOfType(dataset.TypeTemporal)
}
