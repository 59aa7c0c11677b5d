package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KMeansOptions configures a K-means fit
type KMeansOptions struct {
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// DefaultKMeansOptions mirrors the usual library defaults
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{
		Seed:    42,
		NInit:   10,
		MaxIter: 300,
		Tol:     1e-4,
	}
}

// KMeansResult is the best of NInit Lloyd runs
type KMeansResult struct {
	K          int
	Centers    [][]float64
	Labels     []int
	Inertia    float64
	Iterations int
}

var errEmptyFeatures = errors.New("kmeans: no points")

// KMeans clusters features with k-means++ seeding and Lloyd iterations.
// k is capped at the number of distinct points. Run r is seeded with
// opts.Seed+r so the result only depends on the inputs.
func KMeans(features [][]float64, k int, opts KMeansOptions) (*KMeansResult, error) {
	if len(features) == 0 {
		return nil, errEmptyFeatures
	}
	if k < 1 {
		return nil, fmt.Errorf("kmeans: k must be positive, got %d", k)
	}
	if distinct := countDistinct(features); k > distinct {
		k = distinct
	}
	if opts.NInit < 1 {
		opts.NInit = 1
	}
	if opts.MaxIter < 1 {
		opts.MaxIter = 1
	}

	tol := opts.Tol * meanVariance(features)

	var best *KMeansResult
	for run := 0; run < opts.NInit; run++ {
		rng := rand.New(rand.NewSource(opts.Seed + int64(run)))
		centers := seedPlusPlus(features, k, rng)
		result := lloyd(features, centers, opts.MaxIter, tol)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best, nil
}

// countDistinct counts distinct points of the 2-D feature space
func countDistinct(features [][]float64) int {
	seen := make(map[[2]float64]struct{}, len(features))
	for _, f := range features {
		var key [2]float64
		copy(key[:], f)
		seen[key] = struct{}{}
	}
	return len(seen)
}

func meanVariance(features [][]float64) float64 {
	dims := len(features[0])
	if len(features) < 2 {
		return 0
	}
	col := make([]float64, len(features))
	total := 0.0
	for d := 0; d < dims; d++ {
		for i, f := range features {
			col[i] = f[d]
		}
		total += stat.Variance(col, nil)
	}
	return total / float64(dims)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func nearest(p []float64, centers [][]float64) (int, float64) {
	bestIdx, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(p, center); d < bestDist {
			bestIdx, bestDist = c, d
		}
	}
	return bestIdx, bestDist
}

// seedPlusPlus picks the first center uniformly and each next one with
// probability proportional to its squared distance to the closest center.
func seedPlusPlus(features [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := features[rng.Intn(len(features))]
	centers = append(centers, append([]float64(nil), first...))

	dist := make([]float64, len(features))
	for len(centers) < k {
		total := 0.0
		for i, f := range features {
			_, d := nearest(f, centers)
			dist[i] = d
			total += d
		}

		pick := -1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if d > 0 && acc >= target {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			for i, d := range dist {
				if d > 0 {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			break
		}
		centers = append(centers, append([]float64(nil), features[pick]...))
	}
	return centers
}

func lloyd(features [][]float64, centers [][]float64, maxIter int, tol float64) *KMeansResult {
	k := len(centers)
	dims := len(features[0])
	labels := make([]int, len(features))

	iter := 0
	for iter < maxIter {
		iter++
		for i, f := range features {
			labels[i], _ = nearest(f, centers)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, f := range features {
			floats.Add(next[labels[i]], f)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// relocate an empty cluster onto the point farthest from its center
				far, farDist := 0, -1.0
				for i, f := range features {
					if d := sqDist(f, centers[labels[i]]); d > farDist {
						far, farDist = i, d
					}
				}
				copy(next[c], features[far])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range centers {
			shift += sqDist(centers[c], next[c])
		}
		centers = next
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, f := range features {
		var d float64
		labels[i], d = nearest(f, centers)
		inertia += d
	}

	return &KMeansResult{
		K:          k,
		Centers:    centers,
		Labels:     labels,
		Inertia:    inertia,
		Iterations: iter,
	}
}
