package analysis

import (
	"math"

	"geoprospect/domain/geochem"

	"github.com/montanaflynn/stats"
)

// Describe computes summary statistics of positive values
func Describe(values []float64, skipped int) (geochem.ColumnSummary, error) {
	summary := geochem.ColumnSummary{Count: len(values), Skipped: skipped}
	if len(values) == 0 {
		return summary, ErrNoPositiveValues
	}

	var err error
	if summary.Min, err = stats.Min(values); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(values); err != nil {
		return summary, err
	}
	if summary.Mean, err = stats.Mean(values); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(values); err != nil {
		return summary, err
	}

	// geometric mean in log space; the plain product overflows on a few hundred samples
	logs := make([]float64, len(values))
	for i, v := range values {
		logs[i] = math.Log10(v)
	}
	logMean, err := stats.Mean(logs)
	if err != nil {
		return summary, err
	}
	summary.GeometricMean = math.Pow(10, logMean)

	if len(values) < 2 {
		return summary, nil
	}
	if summary.StdDev, err = stats.StandardDeviationSample(values); err != nil {
		return summary, err
	}
	if summary.LogStdDev, err = stats.StandardDeviationSample(logs); err != nil {
		return summary, err
	}
	return summary, nil
}
