package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"testing"

	"geoprospect/domain/geochem"
	"geoprospect/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Survey(t *testing.T) {
	table := testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Generate()

	result, err := Analyze(context.Background(), table, "Cu_ppm", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Cu_ppm", result.Column)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 300, result.Summary.Count)
	assert.Zero(t, result.Summary.Skipped)
	require.Len(t, result.Points, 300)

	// probability ordering
	for i := 1; i < len(result.Points); i++ {
		assert.GreaterOrEqual(t, result.Points[i-1].Value, result.Points[i].Value)
		assert.Less(t, result.Points[i-1].Probability, result.Points[i].Probability)
	}

	// cluster count in range, every point labelled, classes cover all points
	k := result.Clusters()
	assert.GreaterOrEqual(t, k, 1)
	assert.LessOrEqual(t, k, 8)
	assert.Len(t, result.Classes, k)
	total := 0
	for _, c := range result.Classes {
		total += c.Count
	}
	assert.Equal(t, 300, total)
	for _, p := range result.Points {
		assert.GreaterOrEqual(t, p.Class, 1)
		assert.LessOrEqual(t, p.Class, k)
	}

	// classes are ordered from background upwards
	for i := 1; i < len(result.Classes); i++ {
		assert.Greater(t, result.Classes[i].MeanValue, result.Classes[i-1].MeanValue)
		assert.Greater(t, result.Classes[i].Threshold, 0.0)
	}
	assert.Zero(t, result.Classes[0].Threshold)

	// frequency table covers the column
	freqTotal := 0
	for _, f := range result.Frequency {
		freqTotal += f.AbsoluteFrequency
	}
	assert.Equal(t, 300, freqTotal)
	assert.Len(t, result.Frequency, SturgesClasses(300))

	// survey carries lat/lon
	assert.Len(t, result.Locations, 300)
	assert.Equal(t, int64(42), result.Params["seed"])
}

func TestAnalyze_Deterministic(t *testing.T) {
	table := testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Generate()

	a, err := Analyze(context.Background(), table, "Cu_ppm", DefaultOptions())
	require.NoError(t, err)
	b, err := Analyze(context.Background(), table, "Cu_ppm", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Elbow.Elbow, b.Elbow.Elbow)
	assert.Equal(t, a.Elbow.Distortions(), b.Elbow.Distortions())
	assert.Equal(t, a.Classes, b.Classes)
	for i := range a.Points {
		assert.Equal(t, a.Points[i].Class, b.Points[i].Class)
		assert.Equal(t, a.Points[i].RowIndex, b.Points[i].RowIndex)
	}
}

func TestAnalyze_SmallColumn(t *testing.T) {
	table := testkit.Column("Au", "0.5", "1.5", "n.d.")

	result, err := Analyze(context.Background(), table, "Au", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Count)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.LessOrEqual(t, result.Clusters(), 2)
	assert.Nil(t, result.Locations)
}

func TestAnalyze_Errors(t *testing.T) {
	table := testkit.Column("Au", "", "x")

	_, err := Analyze(context.Background(), table, "Cu", DefaultOptions())
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = Analyze(context.Background(), table, "Au", DefaultOptions())
	assert.ErrorIs(t, err, ErrNoPositiveValues)
}

func TestFrequency(t *testing.T) {
	table := testkit.Column("Cu", "1", "10", "100", "1000", "bad")

	rows, err := Frequency(table, "Cu", DetectionSkip)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLabel_OrdersByCentroidValue(t *testing.T) {
	points := []geochem.ProbabilityPoint{{Value: 1000}, {Value: 900}, {Value: 2}, {Value: 1}}
	fit := &KMeansResult{
		K:       2,
		Centers: [][]float64{{1.5, 2.97}, {1.8, 0.15}},
		Labels:  []int{0, 0, 1, 1},
	}

	Label(points, fit)
	assert.Equal(t, []int{2, 2, 1, 1}, []int{points[0].Class, points[1].Class, points[2].Class, points[3].Class})

	classes, err := SummarizeClasses(points)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 1, classes[0].Class)
	assert.InDelta(t, 1.5, classes[0].MeanValue, 1e-12)
	assert.InDelta(t, 900, classes[1].Threshold, 1e-12)
}

func TestDescribe(t *testing.T) {
	summary, err := Describe([]float64{1, 10, 100}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 2, summary.Skipped)
	assert.InDelta(t, 10, summary.GeometricMean, 1e-9)
	assert.InDelta(t, 10, summary.Median, 1e-12)
	assert.InDelta(t, 1, summary.LogStdDev, 1e-9)

	_, err = Describe(nil, 0)
	assert.ErrorIs(t, err, ErrNoPositiveValues)
}

func TestDescribe_LargeColumn(t *testing.T) {
	values := make([]float64, 5000)
	for i := range values {
		values[i] = 500 + float64(i%40)*25
	}

	summary, err := Describe(values, 0)
	require.NoError(t, err)
	assert.False(t, math.IsInf(summary.GeometricMean, 0))
	assert.Greater(t, summary.GeometricMean, summary.Min)
	assert.Less(t, summary.GeometricMean, summary.Mean)
}

func TestAnalyze_SurveyIsSerializable(t *testing.T) {
	table := testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Generate()

	for _, column := range []string{"Cu_ppm", "Zn_ppm"} {
		result, err := Analyze(context.Background(), table, column, DefaultOptions())
		require.NoError(t, err)

		assertFinite(t, column, reflect.ValueOf(result))
		data, err := json.Marshal(result)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

// assertFinite walks v and fails on every NaN or infinite float it holds
func assertFinite(t *testing.T, path string, v reflect.Value) {
	t.Helper()
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "%s = %v", path, f)
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			assertFinite(t, path, v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				assertFinite(t, path+"."+v.Type().Field(i).Name, v.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			assertFinite(t, fmt.Sprintf("%s[%d]", path, i), v.Index(i))
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			assertFinite(t, fmt.Sprintf("%s[%v]", path, iter.Key()), iter.Value())
		}
	}
}

func TestCoordinateColumns(t *testing.T) {
	lat, lon, ok := CoordinateColumns([]string{"id", "Latitude", "LONG", "Cu"})
	assert.True(t, ok)
	assert.Equal(t, "Latitude", lat)
	assert.Equal(t, "LONG", lon)

	_, _, ok = CoordinateColumns([]string{"x", "y"})
	assert.False(t, ok)
}
