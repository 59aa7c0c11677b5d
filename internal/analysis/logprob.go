package analysis

import (
	"math"
	"sort"

	"geoprospect/domain/geochem"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogProbability ranks samples by descending value and assigns each the
// Weibull plotting position P = 100*i/(n+1), the percentage of samples
// greater than or equal to it. Equal values keep their row order.
func LogProbability(samples []Sample) []geochem.ProbabilityPoint {
	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Value > ordered[j].Value
	})

	n := float64(len(ordered))
	points := make([]geochem.ProbabilityPoint, len(ordered))
	for i, s := range ordered {
		rank := i + 1
		p := 100 * float64(rank) / (n + 1)
		points[i] = geochem.ProbabilityPoint{
			Rank:        rank,
			Value:       s.Value,
			Probability: p,
			LogValue:    math.Log10(s.Value),
			LogProb:     math.Log10(p),
			Probit:      distuv.UnitNormal.Quantile(1 - p/100),
			RowIndex:    s.RowIndex,
		}
	}
	return points
}

// Features returns the clustering space of the curve: (log10 P, log10 value)
func Features(points []geochem.ProbabilityPoint) [][]float64 {
	features := make([][]float64, len(points))
	for i, p := range points {
		features[i] = []float64{p.LogProb, p.LogValue}
	}
	return features
}
