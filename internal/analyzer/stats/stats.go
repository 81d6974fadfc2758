// Package stats computes descriptive statistics over numeric samples.
package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrInsufficientData is returned when a sample is too small for the
// requested statistic (variance is undefined below 2 points). Callers
// should degrade gracefully rather than propagate a hard failure.
var ErrInsufficientData = errors.New("insufficient data: need at least 2 samples")

// Summary holds the descriptive statistics of one numeric sample.
type Summary struct {
	Count    int
	Mean     float64
	Variance float64 // Population variance
	StdDev   float64
	Median   float64
	Skewness float64 // Bias-corrected third standardized moment
	Kurtosis float64 // Population excess kurtosis
}

// Describe computes the full summary for a sample. Uses two passes for
// numerical stability. Returns ErrInsufficientData for fewer than 2 values.
func Describe(values []float64) (*Summary, error) {
	n := len(values)
	if n < 2 {
		return nil, ErrInsufficientData
	}

	mean := Mean(values)

	var m2, m3, m4 float64
	for _, v := range values {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	variance := m2 / float64(n)
	stdDev := math.Sqrt(variance)

	s := &Summary{
		Count:    n,
		Mean:     mean,
		Variance: variance,
		StdDev:   stdDev,
		Median:   Median(values),
	}

	// Higher moments are undefined for constant series; leave them at 0.
	if stdDev > 0 {
		if n > 2 {
			// skew = n/((n-1)(n-2)) * sum(((x-mean)/stdDev)^3)
			fn := float64(n)
			s.Skewness = fn / ((fn - 1) * (fn - 2)) * (m3 / (stdDev * stdDev * stdDev))
		}
		s.Kurtosis = (m4/float64(n))/(variance*variance) - 3
	}

	return s, nil
}

// Mean returns the arithmetic mean. Returns 0 for an empty sample.
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

// StdDev returns the population standard deviation. Returns 0 for
// samples of fewer than 2 values.
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// Median returns the middle value of the sample (average of the two
// middle values for even sizes). The input is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
