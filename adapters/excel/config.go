package excel

// ReaderConfig holds configuration for reading tabular files
type ReaderConfig struct {
	Sheet   string `json:"sheet"`    // workbook sheet; empty reads the first sheet
	MaxRows int    `json:"max_rows"` // data rows kept after the header; 0 keeps all
}

// DefaultReaderConfig returns the settings used for uploads
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{MaxRows: 0}
}
