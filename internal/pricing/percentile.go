package pricing

import "sort"

// PickTargetPercentile chooses the strategy's percentile anchor over the
// competitor prices: 25th for value, 75th for premium, median otherwise.
// Index-based on the sorted set, never interpolated, so the result is
// always an element of the input.
func PickTargetPercentile(prices []float64, strategy string) float64 {
	if len(prices) == 0 {
		return 0.5
	}
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	n := len(sorted)
	var idx int
	switch strategy {
	case "value":
		idx = int(0.25 * float64(n-1))
		if idx < 0 {
			idx = 0
		}
	case "premium":
		idx = int(0.75 * float64(n-1))
		if idx > n-1 {
			idx = n - 1
		}
	default:
		idx = int(0.5 * float64(n-1))
	}
	return sorted[idx]
}

// medianOf returns the upper-median (element at index n/2 of the sorted
// set), matching how the market-position classifier has always computed it.
func medianOf(prices []float64) float64 {
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func minOf(prices []float64) float64 {
	m := prices[0]
	for _, p := range prices[1:] {
		if p < m {
			m = p
		}
	}
	return m
}

func maxOf(prices []float64) float64 {
	m := prices[0]
	for _, p := range prices[1:] {
		if p > m {
			m = p
		}
	}
	return m
}
