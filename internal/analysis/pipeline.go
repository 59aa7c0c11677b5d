package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"geoprospect/domain/core"
	"geoprospect/domain/dataset"
	"geoprospect/domain/geochem"
)

// Options configures a full column analysis
type Options struct {
	Elbow          ElbowOptions
	BelowDetection DetectionPolicy
}

// DefaultOptions returns K = 1..8, seed 42, censored cells skipped
func DefaultOptions() Options {
	return Options{
		Elbow:          DefaultElbowOptions(),
		BelowDetection: DetectionSkip,
	}
}

// Params lists the options that change the result, for cache keys and records
func (o Options) Params() map[string]interface{} {
	return map[string]interface{}{
		"k_min":           o.Elbow.KMin,
		"k_max":           o.Elbow.KMax,
		"seed":            o.Elbow.KMeans.Seed,
		"n_init":          o.Elbow.KMeans.NInit,
		"max_iter":        o.Elbow.KMeans.MaxIter,
		"tol":             o.Elbow.KMeans.Tol,
		"sensitivity":     o.Elbow.Sensitivity,
		"below_detection": string(o.BelowDetection),
	}
}

// Analyze runs the log-probability pipeline on one column: extract values,
// rank them, cluster the curve with the elbow-selected K, then build the
// frequency table and class summaries.
func Analyze(ctx context.Context, table *dataset.Table, column string, opts Options) (*geochem.Analysis, error) {
	start := time.Now()

	samples, skipped, err := ExtractValues(table, column, opts.BelowDetection)
	if err != nil {
		return nil, err
	}
	values := sampleValues(samples)

	summary, err := Describe(values, skipped)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", column, err)
	}

	points := LogProbability(samples)

	elbow, fits, err := Elbow(ctx, Features(points), opts.Elbow)
	if err != nil {
		return nil, fmt.Errorf("elbow %s: %w", column, err)
	}
	Label(points, fits[elbow.Elbow-elbow.KMin])

	classes, err := SummarizeClasses(points)
	if err != nil {
		return nil, fmt.Errorf("summarize classes %s: %w", column, err)
	}

	frequency, err := FrequencyTable(values)
	if err != nil {
		return nil, fmt.Errorf("frequency table %s: %w", column, err)
	}

	log.Printf("[Analyze] column=%s n=%d skipped=%d k=%d detected=%v in %.2fms",
		column, len(values), skipped, elbow.Elbow, elbow.Detected, float64(time.Since(start).Nanoseconds())/1e6)

	return &geochem.Analysis{
		ID:        core.NewAnalysisID(),
		Column:    column,
		Summary:   summary,
		Points:    points,
		Frequency: frequency,
		Elbow:     elbow,
		Classes:   classes,
		Locations: Locate(table, points),
		Params:    opts.Params(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Frequency builds only the frequency table of a column
func Frequency(table *dataset.Table, column string, policy DetectionPolicy) ([]geochem.FrequencyClass, error) {
	samples, _, err := ExtractValues(table, column, policy)
	if err != nil {
		return nil, err
	}
	return FrequencyTable(sampleValues(samples))
}
