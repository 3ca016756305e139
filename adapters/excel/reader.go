package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType FileType
	config   ReaderConfig
	logger   *internal.Logger
}

// DetectFileType maps a file name to its format by extension
func DetectFileType(name string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FileCSV, nil
	case ".tsv":
		return FileTSV, nil
	case ".xlsx", ".xlsm":
		return FileXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, config ...ReaderConfig) (*DataReader, error) {
	fileType, err := DetectFileType(filePath)
	if err != nil {
		return nil, err
	}
	cfg := DefaultReaderConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		config:   cfg,
		logger:   internal.DefaultLogger.WithField("component", "file_reader"),
	}, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(r.fileType)), r.filePath)
		}
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	return r.read(filepath.Base(r.filePath), file)
}

// ReadUpload parses an uploaded file, detecting the format from its name
func ReadUpload(name string, src io.Reader, config ReaderConfig) (*ExcelData, error) {
	fileType, err := DetectFileType(name)
	if err != nil {
		return nil, err
	}
	r := &DataReader{
		filePath: name,
		fileType: fileType,
		config:   config,
		logger:   internal.DefaultLogger.WithField("component", "file_reader"),
	}
	return r.read(name, src)
}

func (r *DataReader) read(name string, src io.Reader) (*ExcelData, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case FileXLSX:
		rows, err = r.readExcelRows(src)
	case FileTSV:
		rows, err = readDelimitedRows(src, '\t')
	default:
		rows, err = readDelimitedRows(src, ',')
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.NewInsufficientDataError("read "+string(r.fileType), 2, len(rows))
	}

	data := r.processRows(name, rows)
	r.logger.Debug("%s file %s read in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(r.fileType)), name, float64(time.Since(start).Nanoseconds())/1e6, len(data.Headers), len(data.Rows))
	return data, nil
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readDelimitedRows(src io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into ExcelData format. Short rows are padded
// with empty cells and fully blank rows are dropped.
func (r *DataReader) processRows(name string, rows [][]string) *ExcelData {
	headers := normalizeHeaders(rows[0])

	body := rows[1:]
	if r.config.MaxRows > 0 && len(body) > r.config.MaxRows {
		body = body[:r.config.MaxRows]
	}

	dataRows := make([]dataset.Row, 0, len(body))
	for _, row := range body {
		record := make(dataset.Row, len(headers))
		blank := true
		for j, header := range headers {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell != "" {
				blank = false
			}
			record[header] = cell
		}
		if !blank {
			dataRows = append(dataRows, record)
		}
	}

	return &ExcelData{Name: name, Headers: headers, Rows: dataRows}
}

// normalizeHeaders trims names, fills blanks with column_N and suffixes duplicates
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		headers[i] = name
	}
	return headers
}
