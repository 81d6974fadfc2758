// Package telemetry provides the public SDK types for the FlowSight
// analytics system: sample points, metric batches, and the structures
// the analytics core produces (trends, anomalies, forecasts, reports).
package telemetry

import "time"

// MetricKind identifies one of the tracked network telemetry metrics.
// The set is closed: batches carrying unknown kinds are rejected at the
// analyzer boundary.
type MetricKind string

const (
	MetricBandwidth   MetricKind = "bandwidth"
	MetricLatency     MetricKind = "latency"
	MetricPacketLoss  MetricKind = "packet_loss"
	MetricJitter      MetricKind = "jitter"
	MetricUtilization MetricKind = "utilization"
	MetricErrorRate   MetricKind = "error_rate"
)

// TrackedKinds lists all valid metric kinds in the fixed order the
// analyzer processes them. Report assembly iterates this slice so that
// anomaly output is ordered metric-then-time.
func TrackedKinds() []MetricKind {
	return []MetricKind{
		MetricBandwidth,
		MetricLatency,
		MetricPacketLoss,
		MetricJitter,
		MetricUtilization,
		MetricErrorRate,
	}
}

// Valid reports whether k names a tracked metric kind.
func (k MetricKind) Valid() bool {
	switch k {
	case MetricBandwidth, MetricLatency, MetricPacketLoss,
		MetricJitter, MetricUtilization, MetricErrorRate:
		return true
	}
	return false
}

// Quality grades how trustworthy a sample is at collection time.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// SamplePoint is a single time-stamped telemetry observation.
// Value must be finite; series handed to the analyzer should be ordered
// by Timestamp (the analyzer sorts defensively if they are not).
type SamplePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Quality   Quality   `json:"quality,omitempty"`
}

// MetricBatch carries the sample series for one device, keyed by metric
// kind. It is the payload of the telemetry.samples.collected event.
type MetricBatch struct {
	DeviceID  string                      `json:"device_id"`
	Timestamp time.Time                   `json:"timestamp"`
	Metrics   map[MetricKind][]SamplePoint `json:"metrics"`
}

// TrendDirection classifies the slope of a metric series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendUnknown    TrendDirection = "unknown"
)

// TrendResult is the output of least-squares trend classification.
// Direction is "unknown" when the series was too short to classify.
type TrendResult struct {
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"`
	Confidence float64        `json:"confidence"` // 0.0-1.0
}

// Severity levels for detected anomalies.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Anomaly represents a statistically outlying sample within a series.
// Index, Timestamp, and Value are all retained so callers can correlate
// anomalies across metrics sampled at the same instants.
type Anomaly struct {
	ID         string     `json:"id"`
	DeviceID   string     `json:"device_id"`
	Metric     MetricKind `json:"metric"`
	Index      int        `json:"index"` // Position within the source series
	Timestamp  time.Time  `json:"timestamp"`
	Value      float64    `json:"value"`
	ZScore     float64    `json:"z_score"`
	Severity   string     `json:"severity"`   // "warning" or "critical"
	Confidence float64    `json:"confidence"` // 0.0-1.0
}

// SeasonalComponents is the result of classical multiplicative
// decomposition. Trend and Residual have the length of the input series
// with NaN-free zero entries where the moving-average window overruns
// the boundary; Seasonal is tiled across the full series length from a
// period-length index vector normalized to mean 1.
type SeasonalComponents struct {
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
	Period   int       `json:"period"`
	// Stable is false when fewer than two full periods were available
	// and the seasonal indices defaulted to 1.
	Stable bool `json:"stable"`
}

// ForecastPoint is a single h-step-ahead prediction with its
// confidence bounds.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// Prediction bundles the forecast horizon for one metric.
type Prediction struct {
	Metric     MetricKind      `json:"metric"`
	Forecast   []ForecastPoint `json:"forecast"`
	Confidence float64         `json:"confidence"` // Confidence level used for the bounds
}

// AnalysisReport is the unified output of one analytics pass over a
// metric batch.
type AnalysisReport struct {
	ID          string                        `json:"id"`
	DeviceID    string                        `json:"device_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Trends      map[MetricKind]TrendResult    `json:"trends"`
	Anomalies   []Anomaly                     `json:"anomalies"`
	Predictions []Prediction                  `json:"predictions"`
}
