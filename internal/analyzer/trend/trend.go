// Package trend classifies the direction of a metric series using
// ordinary least squares over the positional index. Regressing on the
// index rather than wall-clock time keeps the fit deterministic under
// irregular sampling.
package trend

import (
	"math"

	"github.com/flowsight/flowsight/pkg/telemetry"
)

// Defaults applied when an Analyzer is constructed with zero values.
const (
	DefaultMinDataPoints        = 5
	DefaultStableSlopeThreshold = 0.1
)

// Analyzer fits value = a + b*index and classifies the slope.
type Analyzer struct {
	MinDataPoints        int     // Below this, direction is "unknown"
	StableSlopeThreshold float64 // |slope| below this is "stable"
}

// NewAnalyzer creates an Analyzer, substituting defaults for zero values.
func NewAnalyzer(minDataPoints int, stableSlopeThreshold float64) *Analyzer {
	if minDataPoints <= 0 {
		minDataPoints = DefaultMinDataPoints
	}
	if stableSlopeThreshold <= 0 {
		stableSlopeThreshold = DefaultStableSlopeThreshold
	}
	return &Analyzer{
		MinDataPoints:        minDataPoints,
		StableSlopeThreshold: stableSlopeThreshold,
	}
}

// Analyze classifies the trend of a series. A series shorter than
// MinDataPoints yields direction "unknown" with confidence 0; this is a
// valid terminal state, not an error.
func (a *Analyzer) Analyze(points []telemetry.SamplePoint) telemetry.TrendResult {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return a.AnalyzeValues(values)
}

// AnalyzeValues is Analyze over a bare float series.
func (a *Analyzer) AnalyzeValues(values []float64) telemetry.TrendResult {
	n := len(values)
	if n < a.MinDataPoints {
		return telemetry.TrendResult{Direction: telemetry.TrendUnknown}
	}

	// Least squares over index 0..n-1.
	var sumX, sumY float64
	for i, v := range values {
		sumX += float64(i)
		sumY += v
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXY, ssXX float64
	lo, hi := values[0], values[0]
	for i, v := range values {
		dx := float64(i) - meanX
		ssXY += dx * (v - meanY)
		ssXX += dx * dx
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	valueRange := hi - lo
	if valueRange == 0 {
		// Perfectly flat series: stable by definition.
		return telemetry.TrendResult{Direction: telemetry.TrendStable}
	}

	slope := ssXY / ssXX

	result := telemetry.TrendResult{
		Slope:      slope,
		Confidence: math.Min(math.Abs(slope)/valueRange, 1),
	}
	switch {
	case math.Abs(slope) < a.StableSlopeThreshold:
		result.Direction = telemetry.TrendStable
	case slope > 0:
		result.Direction = telemetry.TrendIncreasing
	default:
		result.Direction = telemetry.TrendDecreasing
	}
	return result
}
