package tabular

// ReaderConfig holds configuration for uploaded table parsing
type ReaderConfig struct {
	SheetName string `json:"sheet_name"` // empty selects the first sheet
	MaxRows   int    `json:"max_rows"`   // 0 disables the cap
	// NumericThreshold is the share of non-empty cells that must parse for a
	// column to be offered as an element
	NumericThreshold float64 `json:"numeric_threshold"`
	SampleSize       int     `json:"sample_size"`
}

// DefaultReaderConfig returns sensible defaults for upload parsing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxRows:          200000,
		NumericThreshold: 0.5,
		SampleSize:       5,
	}
}
