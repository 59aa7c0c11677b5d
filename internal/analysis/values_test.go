package analysis

import (
	"testing"

	"geoprospect/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"12.5", 12.5, true},
		{"  7 ", 7, true},
		{"0,25", 0.25, true},
		{"1e3", 1000, true},
		{"-3", -3, true},
		{"", 0, false},
		{"n.d.", 0, false},
		{"<0.5", 0, false},
		{"1,000.5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 1e-12)
			}
		})
	}
}

func TestExtractValues(t *testing.T) {
	table := testkit.Column("Cu", "10", "", "abc", "0", "-2", "3,5", "<1", "40")

	samples, skipped, err := ExtractValues(table, "Cu", DetectionSkip)
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	require.Len(t, samples, 3)
	assert.Equal(t, Sample{Value: 10, RowIndex: 0}, samples[0])
	assert.Equal(t, Sample{Value: 3.5, RowIndex: 5}, samples[1])
	assert.Equal(t, Sample{Value: 40, RowIndex: 7}, samples[2])
}

func TestExtractValues_HalfDetectionLimit(t *testing.T) {
	table := testkit.Column("Au", "<1", "<0,2", "<x", "4")

	samples, skipped, err := ExtractValues(table, "Au", DetectionHalf)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []float64{0.5, 0.1, 4}, sampleValues(samples))
}

func TestExtractValues_Errors(t *testing.T) {
	table := testkit.Column("Cu", "0", "", "x")

	_, _, err := ExtractValues(table, "Zn", DetectionSkip)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, skipped, err := ExtractValues(table, "Cu", DetectionSkip)
	assert.ErrorIs(t, err, ErrNoPositiveValues)
	assert.Equal(t, 3, skipped)

	_, _, err = ExtractValues(nil, "Cu", DetectionSkip)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestNumericRatio(t *testing.T) {
	ratio, missing := NumericRatio([]string{"1", "2", "", "x"})
	assert.InDelta(t, 2.0/3.0, ratio, 1e-12)
	assert.Equal(t, 1, missing)

	ratio, missing = NumericRatio([]string{"", " "})
	assert.Zero(t, ratio)
	assert.Equal(t, 2, missing)
}
