package analysis

import (
	"sort"

	"geoprospect/domain/geochem"

	"github.com/montanaflynn/stats"
)

// Label assigns every point its cluster. Clusters are renumbered 1..K by
// ascending centroid log value, so class 1 is the background population.
func Label(points []geochem.ProbabilityPoint, fit *KMeansResult) {
	order := make([]int, fit.K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fit.Centers[order[a]][1] < fit.Centers[order[b]][1]
	})

	classOf := make([]int, fit.K)
	for rank, cluster := range order {
		classOf[cluster] = rank + 1
	}
	for i := range points {
		points[i].Class = classOf[fit.Labels[i]]
	}
}

// SummarizeClasses describes each labelled population. Every class above the
// first gets its lowest value as the threshold separating it from the class below.
func SummarizeClasses(points []geochem.ProbabilityPoint) ([]geochem.ClassSummary, error) {
	values := make(map[int][]float64)
	probs := make(map[int][]float64)
	for _, p := range points {
		values[p.Class] = append(values[p.Class], p.Value)
		probs[p.Class] = append(probs[p.Class], p.Probability)
	}

	classes := make([]int, 0, len(values))
	for c := range values {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	summaries := make([]geochem.ClassSummary, 0, len(classes))
	for _, c := range classes {
		v := stats.Float64Data(values[c])
		minV, err := v.Min()
		if err != nil {
			return nil, err
		}
		maxV, err := v.Max()
		if err != nil {
			return nil, err
		}
		mean, err := v.Mean()
		if err != nil {
			return nil, err
		}
		median, err := v.Median()
		if err != nil {
			return nil, err
		}
		minP, err := stats.Min(probs[c])
		if err != nil {
			return nil, err
		}
		maxP, err := stats.Max(probs[c])
		if err != nil {
			return nil, err
		}

		s := geochem.ClassSummary{
			Class:          c,
			Count:          len(v),
			MinValue:       minV,
			MaxValue:       maxV,
			MeanValue:      mean,
			MedianValue:    median,
			MinProbability: minP,
			MaxProbability: maxP,
		}
		if len(summaries) > 0 {
			s.Threshold = minV
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
