// Package seasonal implements classical multiplicative decomposition of
// a metric series into trend, seasonal, and residual components.
package seasonal

import (
	"github.com/flowsight/flowsight/pkg/telemetry"
)

// DefaultPeriod is the seasonal cycle length used when a Decomposer is
// constructed with a zero period. 24 matches hourly samples with a
// daily cycle.
const DefaultPeriod = 24

// Decomposer splits a series into trend, seasonal, and residual parts
// assuming a fixed cycle length.
type Decomposer struct {
	Period int
}

// NewDecomposer creates a Decomposer, substituting the default period
// for zero or negative values.
func NewDecomposer(period int) *Decomposer {
	if period <= 1 {
		period = DefaultPeriod
	}
	return &Decomposer{Period: period}
}

// Decompose performs multiplicative decomposition: value at i is
// modeled as trend[i] * seasonal[i] * residual[i].
//
// The trend is a centered moving average of window Period; entries where
// the window overruns a series boundary are left at 0 rather than NaN,
// and the residual is 0 at the same positions. With fewer than two full
// periods of data the seasonal indices cannot be estimated: every index
// is 1 and Stable is false.
func (d *Decomposer) Decompose(points []telemetry.SamplePoint) *telemetry.SeasonalComponents {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return d.DecomposeValues(values)
}

// DecomposeValues is Decompose over a bare float series.
func (d *Decomposer) DecomposeValues(values []float64) *telemetry.SeasonalComponents {
	n := len(values)
	period := d.Period

	comps := &telemetry.SeasonalComponents{
		Trend:    make([]float64, n),
		Seasonal: make([]float64, n),
		Residual: make([]float64, n),
		Period:   period,
	}

	if n < 2*period {
		for i := range comps.Seasonal {
			comps.Seasonal[i] = 1
		}
		return comps
	}
	comps.Stable = true

	// Centered moving average of one full period. For i in
	// [half, n-half-1] the window values[i-half : i-half+period] is
	// entirely inside the series.
	half := period / 2
	for i := half; i < n-half; i++ {
		if i-half+period > n {
			break
		}
		var sum float64
		for _, v := range values[i-half : i-half+period] {
			sum += v
		}
		comps.Trend[i] = sum / float64(period)
	}

	// Seasonal indices: average detrended ratio per cycle position,
	// then normalize so the indices mean 1 and the decomposition
	// preserves scale.
	indexSum := make([]float64, period)
	indexCount := make([]int, period)
	for i := range values {
		if comps.Trend[i] == 0 {
			continue
		}
		pos := i % period
		indexSum[pos] += values[i] / comps.Trend[i]
		indexCount[pos]++
	}

	indices := make([]float64, period)
	var total float64
	for pos := range indices {
		if indexCount[pos] > 0 {
			indices[pos] = indexSum[pos] / float64(indexCount[pos])
		} else {
			indices[pos] = 1
		}
		total += indices[pos]
	}
	if total > 0 {
		scale := float64(period) / total
		for pos := range indices {
			indices[pos] *= scale
		}
	}

	for i := range values {
		comps.Seasonal[i] = indices[i%period]
		if comps.Trend[i] != 0 && comps.Seasonal[i] != 0 {
			comps.Residual[i] = values[i] / (comps.Trend[i] * comps.Seasonal[i])
		}
	}
	return comps
}
