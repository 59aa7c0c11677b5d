package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogProbability_PlottingPositions(t *testing.T) {
	samples := []Sample{{Value: 10, RowIndex: 0}, {Value: 1, RowIndex: 1}, {Value: 100, RowIndex: 2}}

	points := LogProbability(samples)
	require.Len(t, points, 3)

	assert.Equal(t, []float64{100, 10, 1}, []float64{points[0].Value, points[1].Value, points[2].Value})
	assert.Equal(t, []int{2, 0, 1}, []int{points[0].RowIndex, points[1].RowIndex, points[2].RowIndex})
	assert.InDelta(t, 25, points[0].Probability, 1e-12)
	assert.InDelta(t, 50, points[1].Probability, 1e-12)
	assert.InDelta(t, 75, points[2].Probability, 1e-12)

	assert.InDelta(t, 2, points[0].LogValue, 1e-12)
	assert.InDelta(t, math.Log10(25), points[0].LogProb, 1e-12)

	// median sample sits on the centre of the normal probability axis
	assert.InDelta(t, 0, points[1].Probit, 1e-9)
	assert.Greater(t, points[0].Probit, 0.0)
	assert.Less(t, points[2].Probit, 0.0)

	// input is not reordered
	assert.Equal(t, 10.0, samples[0].Value)
}

func TestLogProbability_TiesKeepRowOrder(t *testing.T) {
	samples := []Sample{{Value: 5, RowIndex: 3}, {Value: 5, RowIndex: 1}, {Value: 7, RowIndex: 2}}

	points := LogProbability(samples)
	assert.Equal(t, 2, points[0].RowIndex)
	assert.Equal(t, 3, points[1].RowIndex)
	assert.Equal(t, 1, points[2].RowIndex)
	for i, p := range points {
		assert.Equal(t, i+1, p.Rank)
	}
}

func TestFeatures(t *testing.T) {
	points := LogProbability([]Sample{{Value: 1000}, {Value: 10}})
	features := Features(points)

	require.Len(t, features, 2)
	assert.InDelta(t, points[0].LogProb, features[0][0], 1e-12)
	assert.InDelta(t, 3, features[0][1], 1e-12)
}
