package analysis

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns n points around each center with unit-ish spread
func blobs(seed int64, n int, centers ...[]float64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	var features [][]float64
	for _, c := range centers {
		for i := 0; i < n; i++ {
			features = append(features, []float64{c[0] + rng.NormFloat64()*0.5, c[1] + rng.NormFloat64()*0.5})
		}
	}
	return features
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	features := blobs(1, 40, []float64{0, 0}, []float64{50, 50})

	result, err := KMeans(features, 2, DefaultKMeansOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.K)

	first := result.Labels[0]
	for i := 0; i < 40; i++ {
		assert.Equal(t, first, result.Labels[i], "point %d of first blob", i)
	}
	for i := 40; i < 80; i++ {
		assert.NotEqual(t, first, result.Labels[i], "point %d of second blob", i)
	}
	assert.Less(t, result.Inertia, 80.0)
	assert.LessOrEqual(t, result.Iterations, 300)
}

func TestKMeans_Deterministic(t *testing.T) {
	features := blobs(7, 30, []float64{0, 0}, []float64{5, 1}, []float64{2, 8})

	a, err := KMeans(features, 3, DefaultKMeansOptions())
	require.NoError(t, err)
	b, err := KMeans(features, 3, DefaultKMeansOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
	assert.Equal(t, a.Centers, b.Centers)
}

func TestKMeans_SingleClusterInertia(t *testing.T) {
	features := [][]float64{{0, 0}, {2, 0}, {0, 2}, {2, 2}}

	result, err := KMeans(features, 1, DefaultKMeansOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1, result.Centers[0][0], 1e-12)
	assert.InDelta(t, 1, result.Centers[0][1], 1e-12)
	assert.InDelta(t, 8, result.Inertia, 1e-12)
}

func TestKMeans_CapsKAtDistinctPoints(t *testing.T) {
	features := [][]float64{{1, 1}, {1, 1}, {3, 3}}

	result, err := KMeans(features, 5, DefaultKMeansOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.K)
	assert.Zero(t, result.Inertia)
}

func TestKMeans_InvalidInput(t *testing.T) {
	_, err := KMeans(nil, 2, DefaultKMeansOptions())
	assert.Error(t, err)

	_, err = KMeans([][]float64{{1, 2}}, 0, DefaultKMeansOptions())
	assert.Error(t, err)
}

func TestKneedle(t *testing.T) {
	ks := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	distortions := []float64{100, 30, 12, 10, 9, 8.5, 8, 7.8}

	idx, ok := Kneedle(ks, distortions, 1)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestKneedle_NoKnee(t *testing.T) {
	ks := []float64{1, 2, 3, 4}

	_, ok := Kneedle(ks, []float64{40, 30, 20, 10}, 1)
	assert.False(t, ok, "straight line has no knee")

	_, ok = Kneedle(ks, []float64{5, 5, 5, 5}, 1)
	assert.False(t, ok, "flat curve has no knee")

	_, ok = Kneedle([]float64{1, 2}, []float64{10, 1}, 1)
	assert.False(t, ok, "two points are not enough")
}

func TestElbow_FindsTwoPopulations(t *testing.T) {
	features := blobs(3, 50, []float64{0, 0}, []float64{100, 100})

	result, fits, err := Elbow(context.Background(), features, DefaultElbowOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.KMin)
	assert.Equal(t, 8, result.KMax)
	require.Len(t, result.Scores, 8)
	require.Len(t, fits, 8)
	for i, s := range result.Scores {
		assert.Equal(t, i+1, s.K)
		assert.Equal(t, fits[i].Inertia, s.Distortion)
	}
	assert.True(t, result.Detected)
	assert.Equal(t, 2, result.Elbow)
}

func TestElbow_DeterministicAcrossWorkers(t *testing.T) {
	features := blobs(11, 25, []float64{0, 0}, []float64{8, 3}, []float64{20, 20})

	serial := DefaultElbowOptions()
	serial.Workers = 1
	parallel := DefaultElbowOptions()
	parallel.Workers = 8

	a, _, err := Elbow(context.Background(), features, serial)
	require.NoError(t, err)
	b, _, err := Elbow(context.Background(), features, parallel)
	require.NoError(t, err)

	assert.Equal(t, a.Elbow, b.Elbow)
	assert.Equal(t, a.Distortions(), b.Distortions())
	assert.GreaterOrEqual(t, a.Elbow, 1)
	assert.LessOrEqual(t, a.Elbow, 8)
}

func TestElbow_FewDistinctPoints(t *testing.T) {
	features := [][]float64{{0, 0}, {1, 1}, {1, 1}, {5, 5}}

	result, fits, err := Elbow(context.Background(), features, DefaultElbowOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, result.KMax)
	assert.Len(t, fits, 3)
	assert.GreaterOrEqual(t, result.Elbow, 1)
	assert.LessOrEqual(t, result.Elbow, 3)
}

func TestElbow_KMinAboveDistinctPoints(t *testing.T) {
	features := [][]float64{{0, 0}, {0, 0}, {4, 4}, {4, 4}}
	opts := DefaultElbowOptions()
	opts.KMin = 3

	result, fits, err := Elbow(context.Background(), features, opts)
	require.NoError(t, err)
	require.Len(t, fits, 1)
	assert.Equal(t, 2, result.KMin)
	assert.Equal(t, 2, result.KMax)
	assert.Equal(t, 2, result.Elbow)
	assert.Equal(t, fits[0].K, result.Elbow)
	assert.Equal(t, 2, result.Scores[0].K)
}

func TestCountDistinct(t *testing.T) {
	assert.Equal(t, 3, countDistinct([][]float64{{0, 1}, {1, 0}, {0, 1}, {1, 1}}))
	assert.Equal(t, 1, countDistinct([][]float64{{2, 2}, {2, 2}}))
}

func TestElbow_SinglePoint(t *testing.T) {
	result, fits, err := Elbow(context.Background(), [][]float64{{1, 1}}, DefaultElbowOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Elbow)
	assert.False(t, result.Detected)
	assert.Len(t, fits, 1)
}

func TestElbow_InvalidRange(t *testing.T) {
	opts := DefaultElbowOptions()
	opts.KMin, opts.KMax = 4, 2

	_, _, err := Elbow(context.Background(), [][]float64{{1, 1}}, opts)
	assert.Error(t, err)
}

func TestElbow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Elbow(ctx, blobs(5, 10, []float64{0, 0}), DefaultElbowOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
