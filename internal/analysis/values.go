package analysis

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"geoprospect/domain/dataset"
)

var (
	// ErrColumnNotFound is returned when the selected column is not in the table
	ErrColumnNotFound = errors.New("column not found")
	// ErrNoPositiveValues is returned when a column has nothing a log transform can use
	ErrNoPositiveValues = errors.New("no positive numeric values")
)

// DetectionPolicy controls how censored cells such as "<0.5" are treated
type DetectionPolicy string

const (
	// DetectionSkip drops censored cells like any other non-numeric cell
	DetectionSkip DetectionPolicy = "skip"
	// DetectionHalf replaces "<L" with L/2
	DetectionHalf DetectionPolicy = "half"
)

// Sample is a parsed value and the row it came from
type Sample struct {
	Value    float64
	RowIndex int
}

// ParseNumber parses a cell as a float. A single comma is accepted as the
// decimal separator when the cell has no dot.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCensored handles "<L" detection-limit cells
func parseCensored(cell string, policy DetectionPolicy) (float64, bool) {
	s := strings.TrimSpace(cell)
	if policy != DetectionHalf || !strings.HasPrefix(s, "<") {
		return 0, false
	}
	limit, ok := ParseNumber(strings.TrimPrefix(s, "<"))
	if !ok || limit <= 0 {
		return 0, false
	}
	return limit / 2, true
}

// ExtractValues collects the positive numeric values of a column. Cells that
// are empty, non-numeric or not strictly positive are counted as skipped.
func ExtractValues(table *dataset.Table, column string, policy DetectionPolicy) ([]Sample, int, error) {
	if table == nil || !table.HasColumn(column) {
		return nil, 0, ErrColumnNotFound
	}

	samples := make([]Sample, 0, len(table.Rows))
	skipped := 0
	for i, cell := range table.Column(column) {
		v, ok := ParseNumber(cell)
		if !ok {
			v, ok = parseCensored(cell, policy)
		}
		if !ok || v <= 0 {
			skipped++
			continue
		}
		samples = append(samples, Sample{Value: v, RowIndex: i})
	}

	if len(samples) == 0 {
		return nil, skipped, ErrNoPositiveValues
	}
	return samples, skipped, nil
}

// NumericRatio returns the share of non-empty cells that parse as numbers
func NumericRatio(cells []string) (ratio float64, missing int) {
	parsed, present := 0, 0
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			missing++
			continue
		}
		present++
		if _, ok := ParseNumber(c); ok {
			parsed++
		}
	}
	if present == 0 {
		return 0, missing
	}
	return float64(parsed) / float64(present), missing
}

func sampleValues(samples []Sample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}
