package estimator

import "TrendSentinel/internal/model"

// Changes returns the day-over-day price changes, one fewer than the
// window length.
func Changes(window model.PriceWindow) []float64 {
	if len(window) < 2 {
		return nil
	}
	changes := make([]float64, len(window)-1)
	for i := 1; i < len(window); i++ {
		changes[i-1] = window[i] - window[i-1]
	}
	return changes
}

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance of xs, 0 for fewer than two
// values.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}
