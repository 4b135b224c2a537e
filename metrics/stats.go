package metrics

import "math"

func nan() float64 {
	return math.NaN()
}

// mean computes the arithmetic mean of a float64 slice.
// Returns NaN for empty input, matching the package's empty-input policy.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return nan()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
