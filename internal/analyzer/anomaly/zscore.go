// Package anomaly flags statistical outliers in a metric series using
// z-score detection against the series' own mean and standard deviation.
package anomaly

import (
	"math"
	"time"

	"github.com/flowsight/flowsight/internal/analyzer/stats"
	"github.com/flowsight/flowsight/pkg/telemetry"
)

// Defaults applied when a Detector is constructed with zero values.
const (
	DefaultZThreshold         = 2.5
	DefaultCriticalMultiplier = 1.5
)

// Flag marks one outlying point. Index, Timestamp, and Value are all
// retained so callers can correlate flags across metrics sampled at the
// same instants.
type Flag struct {
	Index      int
	Timestamp  time.Time
	Value      float64
	ZScore     float64
	Severity   string  // telemetry.SeverityWarning or SeverityCritical
	Confidence float64 // 0.0-1.0
}

// Detector flags points whose z-score exceeds ZThreshold.
type Detector struct {
	ZThreshold         float64 // Minimum |z| to flag
	CriticalMultiplier float64 // |z| above ZThreshold*CriticalMultiplier is critical
}

// NewDetector creates a Detector, substituting defaults for zero values.
func NewDetector(zThreshold, criticalMultiplier float64) *Detector {
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	if criticalMultiplier <= 0 {
		criticalMultiplier = DefaultCriticalMultiplier
	}
	return &Detector{
		ZThreshold:         zThreshold,
		CriticalMultiplier: criticalMultiplier,
	}
}

// Detect scans a series and returns flags in series order. A series too
// short for a standard deviation, or one with zero variance, yields no
// flags regardless of its values.
func (d *Detector) Detect(points []telemetry.SamplePoint) []Flag {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	summary, err := stats.Describe(values)
	if err != nil || summary.StdDev == 0 {
		return nil
	}

	var flags []Flag
	for i, p := range points {
		z := math.Abs(p.Value-summary.Mean) / summary.StdDev
		if z <= d.ZThreshold {
			continue
		}

		severity := telemetry.SeverityWarning
		if z > d.ZThreshold*d.CriticalMultiplier {
			severity = telemetry.SeverityCritical
		}

		flags = append(flags, Flag{
			Index:      i,
			Timestamp:  p.Timestamp,
			Value:      p.Value,
			ZScore:     z,
			Severity:   severity,
			Confidence: math.Min(z/(d.ZThreshold*2), 1),
		})
	}
	return flags
}
