package tabular

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"geoprospect/domain/dataset"
	"geoprospect/internal/analysis"
	apperrors "geoprospect/internal/errors"
)

// Reader parses uploaded CSV, Excel and JSON files into tables
type Reader struct {
	config ReaderConfig
}

// NewReader creates a new upload reader
func NewReader(config ReaderConfig) *Reader {
	if config.NumericThreshold <= 0 {
		config.NumericThreshold = DefaultReaderConfig().NumericThreshold
	}
	return &Reader{config: config}
}

// FormatOf maps a filename extension to a supported format
func FormatOf(filename string) (dataset.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return dataset.FormatCSV, nil
	case ".xlsx", ".xlsm":
		return dataset.FormatXLSX, nil
	case ".json":
		return dataset.FormatJSON, nil
	default:
		return "", apperrors.UnsupportedFormat(filename)
	}
}

// Read parses file contents into a table, choosing the parser by extension
func (r *Reader) Read(filename string, data []byte) (*dataset.Table, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	log.Printf("[TableReader] Reading %s file: %s (%d bytes)", format, filename, len(data))

	start := time.Now()
	var rows [][]string
	switch format {
	case dataset.FormatCSV:
		rows, err = readCSV(data)
	case dataset.FormatXLSX:
		rows, err = readExcel(data, r.config.SheetName)
	case dataset.FormatJSON:
		rows, err = readJSON(data)
	}
	if err != nil {
		return nil, apperrors.MalformedFile(fmt.Sprintf("could not parse %s", filename), err)
	}
	log.Printf("[TableReader] %s parsed in %.2fms (%d raw rows)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	table, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[TableReader] %s processed (%d columns, %d rows)", filename, len(table.Headers), len(table.Rows))
	return table, nil
}

// processRows converts raw string rows into a table. Index artifact columns
// are dropped, duplicate headers get a ".N" suffix and blank rows are skipped.
func (r *Reader) processRows(rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, apperrors.MalformedFile("file must have a header row and at least one data row", nil)
	}

	names := newHeaderNames(rows[0])
	keep := make([]int, 0, len(rows[0]))
	headers := make([]string, 0, len(rows[0]))
	for i, raw := range rows[0] {
		header := strings.TrimSpace(raw)
		if dataset.IsIndexArtifact(header) {
			continue
		}
		header = names.unique(header)
		keep = append(keep, i)
		headers = append(headers, header)
	}
	if len(headers) == 0 {
		return nil, apperrors.MalformedFile("file has no named columns", nil)
	}

	data := make([]dataset.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(dataset.Row, len(headers))
		blank := true
		for j, idx := range keep {
			cell := ""
			if idx < len(raw) {
				cell = strings.TrimSpace(raw[idx])
			}
			if cell != "" {
				blank = false
			}
			row[headers[j]] = cell
		}
		if blank {
			continue
		}
		data = append(data, row)
		if r.config.MaxRows > 0 && len(data) > r.config.MaxRows {
			return nil, apperrors.InvalidInput(fmt.Sprintf("file has more than %d data rows", r.config.MaxRows))
		}
	}
	if len(data) == 0 {
		return nil, apperrors.MalformedFile("file has no data rows", nil)
	}

	return &dataset.Table{Headers: headers, Rows: data}, nil
}

// Profile describes every column of a table, flagging those that parse as numbers
func (r *Reader) Profile(table *dataset.Table) []dataset.Column {
	columns := make([]dataset.Column, 0, len(table.Headers))
	for _, header := range table.Headers {
		cells := table.Column(header)
		ratio, missing := analysis.NumericRatio(cells)
		columns = append(columns, dataset.Column{
			Name:         header,
			Numeric:      ratio >= r.config.NumericThreshold,
			NumericRatio: ratio,
			MissingCount: missing,
			SampleValues: sample(cells, r.config.SampleSize),
		})
	}
	return columns
}

func sample(cells []string, n int) []string {
	var out []string
	for _, c := range cells {
		if len(out) >= n {
			break
		}
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// headerNames mangles duplicate headers as name.1, name.2, ... skipping any
// suffix that is already a header of the file
type headerNames struct {
	raw  map[string]bool
	used map[string]bool
	next map[string]int
}

func newHeaderNames(headers []string) *headerNames {
	h := &headerNames{
		raw:  make(map[string]bool, len(headers)),
		used: make(map[string]bool, len(headers)),
		next: make(map[string]int),
	}
	for _, header := range headers {
		h.raw[strings.TrimSpace(header)] = true
	}
	return h
}

func (h *headerNames) unique(name string) string {
	if !h.used[name] {
		h.used[name] = true
		return name
	}
	for {
		h.next[name]++
		candidate := fmt.Sprintf("%s.%d", name, h.next[name])
		if !h.raw[candidate] && !h.used[candidate] {
			h.used[candidate] = true
			return candidate
		}
	}
}
