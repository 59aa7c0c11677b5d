package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSturgesClasses(t *testing.T) {
	assert.Equal(t, 1, SturgesClasses(0))
	assert.Equal(t, 1, SturgesClasses(1))
	assert.Equal(t, 3, SturgesClasses(4))
	assert.Equal(t, 8, SturgesClasses(100))
	assert.Equal(t, 11, SturgesClasses(1000))
}

func TestFrequencyTable_LogClasses(t *testing.T) {
	table, err := FrequencyTable([]float64{1, 10, 100, 1000})
	require.NoError(t, err)
	require.Len(t, table, 3)

	expectedMin := []float64{1, 10, 100}
	expectedMax := []float64{10, 100, 1000}
	expectedAbs := []int{1, 1, 2}
	expectedCum := []int{1, 2, 4}
	expectedDirect := []float64{25, 50, 100}
	expectedInverted := []float64{100, 75, 50}

	for i, row := range table {
		assert.InDelta(t, expectedMin[i], row.Minimum, 1e-9, "class %d minimum", i)
		assert.InDelta(t, expectedMax[i], row.Maximum, 1e-9, "class %d maximum", i)
		assert.InDelta(t, float64(i), row.MinimumLog, 1e-12)
		assert.Equal(t, expectedAbs[i], row.AbsoluteFrequency)
		assert.Equal(t, expectedCum[i], row.CumulativeFrequency)
		assert.InDelta(t, expectedDirect[i], row.CumulativeDirectPct, 1e-9)
		assert.InDelta(t, expectedInverted[i], row.CumulativeInvertPct, 1e-9)
	}
	assert.InDelta(t, 50, table[2].RelativeFrequency, 1e-9)
}

func TestFrequencyTable_ConstantValues(t *testing.T) {
	table, err := FrequencyTable([]float64{5, 5, 5})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, 3, table[0].AbsoluteFrequency)
	assert.InDelta(t, 100, table[0].RelativeFrequency, 1e-9)
	assert.InDelta(t, 5, table[0].Minimum, 1e-9)
	assert.InDelta(t, 5, table[0].Maximum, 1e-9)
}

func TestFrequencyTable_CountsEveryValue(t *testing.T) {
	values := make([]float64, 0, 250)
	for i := 1; i <= 250; i++ {
		values = append(values, float64(i)*0.37)
	}
	table, err := FrequencyTable(values)
	require.NoError(t, err)

	total := 0
	for _, row := range table {
		total += row.AbsoluteFrequency
	}
	assert.Equal(t, 250, total)
	assert.Equal(t, 250, table[len(table)-1].CumulativeFrequency)
	assert.InDelta(t, 100, table[0].CumulativeInvertPct, 1e-9)
}

func TestFrequencyTable_Errors(t *testing.T) {
	_, err := FrequencyTable(nil)
	assert.ErrorIs(t, err, ErrNoPositiveValues)

	_, err = FrequencyTable([]float64{0, 1})
	assert.ErrorIs(t, err, ErrNoPositiveValues)
}
