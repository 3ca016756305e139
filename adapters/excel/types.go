package excel

import (
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	tabular "github.com/StephenStolk/analyseX-sub001/internal/dataset"
)

// FileType identifies the container format of an upload
type FileType string

const (
	FileCSV  FileType = "csv"
	FileTSV  FileType = "tsv"
	FileXLSX FileType = "xlsx"
)

// ExcelData represents a parsed file: a header and rows keyed by header name.
// Cell values are the trimmed raw strings; typing happens in the dataset.
type ExcelData struct {
	Name    string        `json:"name"`
	Headers []string      `json:"headers"`
	Rows    []dataset.Row `json:"rows"`
}

// Dataset builds a profiled dataset keeping the file's column order
func (d *ExcelData) Dataset(opts ...tabular.Options) *tabular.Dataset {
	return tabular.NewWithColumns(d.Headers, d.Rows, opts...)
}
