package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"geoprospect/domain/geochem"

	"golang.org/x/sync/errgroup"
)

// ElbowOptions configures the cluster-count search
type ElbowOptions struct {
	KMin        int
	KMax        int
	KMeans      KMeansOptions
	Workers     int
	Sensitivity float64
}

// DefaultElbowOptions searches K = 1..8
func DefaultElbowOptions() ElbowOptions {
	return ElbowOptions{
		KMin:        1,
		KMax:        8,
		KMeans:      DefaultKMeansOptions(),
		Sensitivity: 1.0,
	}
}

// Elbow fits K-means for every K in [KMin, KMax] and locates the knee of the
// distortion curve. Both ends of the K range are lowered to the number of
// distinct points so every fit has exactly K clusters. Fits run concurrently;
// scores are stored by index so the outcome does not depend on scheduling.
func Elbow(ctx context.Context, features [][]float64, opts ElbowOptions) (geochem.ElbowResult, []*KMeansResult, error) {
	if len(features) == 0 {
		return geochem.ElbowResult{}, nil, errEmptyFeatures
	}
	if opts.KMin < 1 || opts.KMax < opts.KMin {
		return geochem.ElbowResult{}, nil, fmt.Errorf("invalid K range [%d, %d]", opts.KMin, opts.KMax)
	}

	kMin, kMax := opts.KMin, opts.KMax
	distinct := countDistinct(features)
	if kMax > distinct {
		kMax = distinct
	}
	if kMin > kMax {
		kMin = kMax
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	count := kMax - kMin + 1
	scores := make([]geochem.ElbowScore, count)
	fits := make([]*KMeansResult, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < count; i++ {
		i := i
		k := kMin + i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			fit, err := KMeans(features, k, opts.KMeans)
			if err != nil {
				return fmt.Errorf("fit k=%d: %w", k, err)
			}
			fits[i] = fit
			scores[i] = geochem.ElbowScore{K: k, Distortion: fit.Inertia, FitTime: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return geochem.ElbowResult{}, nil, err
	}

	result := geochem.ElbowResult{
		KMin:   kMin,
		KMax:   kMax,
		Scores: scores,
		Elbow:  kMin,
	}
	if idx, ok := Kneedle(result.KValues(), result.Distortions(), opts.Sensitivity); ok {
		result.Elbow = scores[idx].K
		result.Detected = true
	}
	return result, fits, nil
}

// kneeEpsilon keeps rounding noise on straight curves from reading as a maximum
const kneeEpsilon = 1e-9

// Kneedle finds the knee of a convex, decreasing curve (Satopaa et al. 2011,
// offline variant). It returns the index of the knee and whether one exists.
func Kneedle(x, y []float64, sensitivity float64) (int, bool) {
	n := len(x)
	if n < 3 || len(y) != n {
		return 0, false
	}
	xn, okX := normalize(x)
	yn, okY := normalize(y)
	if !okX || !okY {
		return 0, false
	}

	diff := make([]float64, n)
	for i := range diff {
		diff[i] = (1 - yn[i]) - xn[i]
	}

	meanDx := 0.0
	for i := 1; i < n; i++ {
		meanDx += xn[i] - xn[i-1]
	}
	meanDx = math.Abs(meanDx / float64(n-1))

	isMax := make([]bool, n)
	isMin := make([]bool, n)
	first := -1
	for i := 1; i < n-1; i++ {
		if diff[i] > kneeEpsilon && diff[i] > diff[i-1] && diff[i] > diff[i+1] {
			isMax[i] = true
			if first < 0 {
				first = i
			}
		}
		if diff[i] < diff[i-1] && diff[i] < diff[i+1] {
			isMin[i] = true
		}
	}
	if first < 0 {
		return 0, false
	}

	threshold := 0.0
	thresholdIdx := first
	for i := first; i < n-1; i++ {
		if isMax[i] {
			threshold = diff[i] - sensitivity*meanDx
			thresholdIdx = i
		}
		if isMin[i] {
			threshold = 0
		}
		if diff[i+1] < threshold {
			return thresholdIdx, true
		}
	}
	return 0, false
}

func normalize(v []float64) ([]float64, bool) {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi == lo {
		return nil, false
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - lo) / (hi - lo)
	}
	return out, true
}
