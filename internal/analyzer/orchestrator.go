package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flowsight/flowsight/internal/analyzer/anomaly"
	"github.com/flowsight/flowsight/internal/analyzer/forecast"
	"github.com/flowsight/flowsight/internal/analyzer/seasonal"
	"github.com/flowsight/flowsight/internal/analyzer/trend"
	"github.com/flowsight/flowsight/pkg/telemetry"
)

// ErrInvalidInput is returned for a nil or malformed metric batch.
// Malformed means a missing device ID, an empty metrics payload, an
// unknown metric kind, or a non-finite sample value.
var ErrInvalidInput = errors.New("invalid input")

// Orchestrator runs one analytics pass over a metric batch: trend
// classification, anomaly detection, and forecasting per tracked
// metric, assembled into a single report.
//
// The stateless components are safe for concurrent use; forecast-model
// state is isolated per series inside the engine.
type Orchestrator struct {
	cfg       AnalyzerConfig
	trends    *trend.Analyzer
	anomalies *anomaly.Detector
	seasons   *seasonal.Decomposer
	forecasts *forecast.Engine
}

// NewOrchestrator wires the analytics components from one config.
func NewOrchestrator(cfg AnalyzerConfig) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		trends:    trend.NewAnalyzer(cfg.MinDataPoints, cfg.StableSlopeThreshold),
		anomalies: anomaly.NewDetector(cfg.ZThreshold, cfg.CriticalMultiplier),
		seasons:   seasonal.NewDecomposer(cfg.SeasonalPeriod),
		forecasts: forecast.NewEngine(forecast.Options{
			Alpha:          cfg.Alpha,
			Beta:           cfg.Beta,
			Gamma:          cfg.Gamma,
			SeasonalPeriod: cfg.SeasonalPeriod,
			MinDataPoints:  cfg.MinDataPoints,
		}),
	}
}

// Forecasts exposes the keyed forecast engine for callers that manage
// model lifecycle directly.
func (o *Orchestrator) Forecasts() *forecast.Engine { return o.forecasts }

// Decompose runs seasonal decomposition over one series. Decomposition
// informs capacity review rather than the per-batch report, so it is a
// separate entry point.
func (o *Orchestrator) Decompose(points []telemetry.SamplePoint) *telemetry.SeasonalComponents {
	return o.seasons.Decompose(points)
}

// ProcessBatch validates a batch and produces one AnalysisReport.
// Tracked metrics absent from the payload are omitted from the report;
// a series too short to trend or forecast degrades to an unknown trend
// or no prediction, never an error. Anomalies are ordered
// metric-then-time.
func (o *Orchestrator) ProcessBatch(batch *telemetry.MetricBatch) (*telemetry.AnalysisReport, error) {
	start := time.Now()
	if err := validateBatch(batch); err != nil {
		return nil, err
	}

	report := &telemetry.AnalysisReport{
		ID:          uuid.NewString(),
		DeviceID:    batch.DeviceID,
		GeneratedAt: time.Now().UTC(),
		Trends:      make(map[telemetry.MetricKind]telemetry.TrendResult),
	}

	for _, kind := range telemetry.TrackedKinds() {
		points := batch.Metrics[kind]
		if len(points) == 0 {
			continue
		}
		points = sortedByTime(points)

		if result := o.trends.Analyze(points); result.Direction != telemetry.TrendUnknown {
			report.Trends[kind] = result
		}

		for _, flag := range o.anomalies.Detect(points) {
			report.Anomalies = append(report.Anomalies, telemetry.Anomaly{
				ID:         uuid.NewString(),
				DeviceID:   batch.DeviceID,
				Metric:     kind,
				Index:      flag.Index,
				Timestamp:  flag.Timestamp,
				Value:      flag.Value,
				ZScore:     flag.ZScore,
				Severity:   flag.Severity,
				Confidence: flag.Confidence,
			})
			anomaliesDetectedTotal.WithLabelValues(flag.Severity).Inc()
		}

		prediction, err := o.forecasts.Forecast(
			batch.DeviceID, kind, points, o.cfg.ForecastHorizon, o.cfg.ConfidenceLevel)
		if err != nil {
			// Short series degrade to no prediction.
			continue
		}
		report.Predictions = append(report.Predictions, *prediction)
		forecastsGeneratedTotal.Inc()
	}

	batchesProcessedTotal.Inc()
	batchDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

func validateBatch(batch *telemetry.MetricBatch) error {
	if batch == nil {
		return fmt.Errorf("nil batch: %w", ErrInvalidInput)
	}
	if batch.DeviceID == "" {
		return fmt.Errorf("missing device id: %w", ErrInvalidInput)
	}
	if len(batch.Metrics) == 0 {
		return fmt.Errorf("empty metrics payload: %w", ErrInvalidInput)
	}
	for kind, points := range batch.Metrics {
		if !kind.Valid() {
			return fmt.Errorf("unknown metric kind %q: %w", kind, ErrInvalidInput)
		}
		for i, p := range points {
			if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				return fmt.Errorf("non-finite value for %s at index %d: %w", kind, i, ErrInvalidInput)
			}
		}
	}
	return nil
}

// sortedByTime returns the series in timestamp order, copying only
// when the input is out of order.
func sortedByTime(points []telemetry.SamplePoint) []telemetry.SamplePoint {
	sorted := true
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			sorted = false
			break
		}
	}
	if sorted {
		return points
	}

	out := make([]telemetry.SamplePoint, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
