package metrics

import "math"

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the population standard deviation. Returns 0 for empty input.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Range returns the smallest and largest value, or (0, 0) for empty input.
func Range(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// ConfidenceInterval95 returns the 95% confidence interval (low, high)
// using the normal approximation (z=1.96). Returns (mean, mean) when
// fewer than 2 data points are available.
func ConfidenceInterval95(values []float64) (float64, float64) {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return m, m
	}
	// sample standard deviation (Bessel's correction)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	sampleSD := math.Sqrt(sumSq / float64(n-1))
	margin := 1.96 * sampleSD / math.Sqrt(float64(n))
	return m - margin, m + margin
}

// Bands counts values strictly below low and values at or above high.
func Bands(values []float64, low, high float64) (below int, above int) {
	for _, v := range values {
		if v < low {
			below++
		}
		if v >= high {
			above++
		}
	}
	return below, above
}
