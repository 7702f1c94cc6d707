package stats

import (
	"math"
	"sort"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
)

// Describe summarizes the finite probabilities of a dataset.
// Every field is 0 when there are none.
func Describe(dataset models.Dataset) models.ProbabilityStats {
	values := make([]float64, 0, len(dataset))
	for _, s := range dataset {
		if s.HasValidProbability() {
			values = append(values, s.Probability)
		}
	}
	if len(values) == 0 {
		return models.ProbabilityStats{}
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	return models.ProbabilityStats{
		Count:  len(values),
		Mean:   mean,
		StdDev: stdDev(values, mean),
		Min:    values[0],
		Max:    values[len(values)-1],
		P10:    quantile(values, 0.1),
		Median: quantile(values, 0.5),
		P90:    quantile(values, 0.9),
	}
}

// stdDev is the sample standard deviation
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}

// quantile interpolates linearly between closest ranks of sorted values
func quantile(sorted []float64, q float64) float64 {
	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
