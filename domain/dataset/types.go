package dataset

import (
	"strings"
	"time"

	"geoprospect/domain/core"
)

// Format identifies how an uploaded file was parsed
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Row is a single record keyed by column header
type Row map[string]string

// Table is a flat record set with ordered column headers
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the raw cells of a column in row order
func (t *Table) Column(name string) []string {
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[name]
	}
	return cells
}

// Slice returns up to limit rows starting at offset
func (t *Table) Slice(offset, limit int) []Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.Rows) {
		return []Row{}
	}
	end := len(t.Rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return t.Rows[offset:end]
}

// IsIndexArtifact reports headers that carry no data: blank names and the
// "Unnamed: N" columns spreadsheets exported from data frames tend to have.
func IsIndexArtifact(header string) bool {
	h := strings.TrimSpace(header)
	return h == "" || strings.HasPrefix(h, "Unnamed")
}

// Column describes one column of an uploaded table
type Column struct {
	Name         string   `json:"name"`
	Numeric      bool     `json:"numeric"`
	NumericRatio float64  `json:"numeric_ratio"`
	MissingCount int      `json:"missing_count"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// Dataset is an uploaded table held for the duration of a browser session
type Dataset struct {
	ID               core.DatasetID `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	Format           Format         `json:"format"`
	FileSize         int64          `json:"file_size"`
	ContentHash      core.Hash      `json:"content_hash"`
	ArchivePath      string         `json:"-"`
	Columns          []Column       `json:"columns"`
	RecordCount      int            `json:"record_count"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	Table            *Table         `json:"-"`
}

// NumericColumns returns the names of columns suitable for element selection
func (d *Dataset) NumericColumns() []string {
	var names []string
	for _, c := range d.Columns {
		if c.Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}
