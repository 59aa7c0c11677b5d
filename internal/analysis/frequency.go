package analysis

import (
	"math"

	"geoprospect/domain/geochem"

	"github.com/montanaflynn/stats"
)

// SturgesClasses returns the class count 1 + 3.322*log10(n), rounded, at least 1
func SturgesClasses(n int) int {
	if n <= 1 {
		return 1
	}
	c := int(math.Round(1 + 3.322*math.Log10(float64(n))))
	if c < 1 {
		return 1
	}
	return c
}

// FrequencyTable buckets positive values into Sturges classes of equal width
// in log10 space. The last class is closed so the maximum is counted.
func FrequencyTable(values []float64) ([]geochem.FrequencyClass, error) {
	if len(values) == 0 {
		return nil, ErrNoPositiveValues
	}
	min, err := stats.Min(values)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return nil, err
	}
	if min <= 0 {
		return nil, ErrNoPositiveValues
	}

	n := len(values)
	lmin, lmax := math.Log10(min), math.Log10(max)

	classes := SturgesClasses(n)
	if lmax == lmin {
		classes = 1
	}
	width := (lmax - lmin) / float64(classes)

	counts := make([]int, classes)
	for _, v := range values {
		idx := 0
		if width > 0 {
			idx = int((math.Log10(v) - lmin) / width)
		}
		if idx >= classes {
			idx = classes - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	table := make([]geochem.FrequencyClass, classes)
	cumulative := 0
	for i := 0; i < classes; i++ {
		lower := lmin + float64(i)*width
		upper := lower + width
		if i == classes-1 {
			upper = lmax
		}
		before := cumulative
		cumulative += counts[i]

		minimum, maximum := math.Pow(10, lower), math.Pow(10, upper)
		if i == 0 {
			minimum = min
		}
		if i == classes-1 {
			maximum = max
		}

		table[i] = geochem.FrequencyClass{
			Minimum:             minimum,
			Maximum:             maximum,
			MinimumLog:          lower,
			AbsoluteFrequency:   counts[i],
			RelativeFrequency:   100 * float64(counts[i]) / float64(n),
			CumulativeFrequency: cumulative,
			CumulativeDirectPct: 100 * float64(cumulative) / float64(n),
			CumulativeInvertPct: 100 * float64(n-before) / float64(n),
		}
	}
	return table, nil
}
