package forecast

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowsight/flowsight/pkg/telemetry"
)

// ErrModelNotTrained is returned by Observe when no model exists yet
// for the requested series.
var ErrModelNotTrained = errors.New("forecast model not trained")

// defaultSampleInterval spaces forecast timestamps when the training
// series is too short to derive a sampling interval.
const defaultSampleInterval = time.Hour

// Engine maintains one Holt-Winters model per (device, metric) series.
// Models are independent: updates to different series proceed in
// parallel, while updates to the same series serialize on a per-slot
// lock.
type Engine struct {
	opts Options

	mu    sync.RWMutex
	slots map[string]*slot
}

type slot struct {
	mu    sync.Mutex
	model *Model
}

// NewEngine creates an Engine using opts for every model it trains.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:  opts.withDefaults(),
		slots: make(map[string]*slot),
	}
}

func seriesKey(deviceID string, metric telemetry.MetricKind) string {
	return deviceID + "|" + string(metric)
}

func (e *Engine) slotFor(key string) *slot {
	e.mu.RLock()
	s, ok := e.slots[key]
	e.mu.RUnlock()
	if ok {
		return s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok = e.slots[key]; ok {
		return s
	}
	s = &slot{}
	e.slots[key] = s
	return s
}

// Retrain rebuilds the series model from scratch by replaying every
// point. Retraining is deterministic: the same history always produces
// the same model state.
func (e *Engine) Retrain(deviceID string, metric telemetry.MetricKind, points []telemetry.SamplePoint) error {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	model, err := Train(values, e.opts)
	if err != nil {
		return fmt.Errorf("retrain %s/%s: %w", deviceID, metric, err)
	}

	s := e.slotFor(seriesKey(deviceID, metric))
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

// Observe feeds a single new sample into an existing model. Cheaper
// than retraining but accumulates drift; callers decide when to fall
// back to Retrain.
func (e *Engine) Observe(deviceID string, metric telemetry.MetricKind, value float64) error {
	e.mu.RLock()
	s, ok := e.slots[seriesKey(deviceID, metric)]
	e.mu.RUnlock()
	if !ok {
		return ErrModelNotTrained
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return ErrModelNotTrained
	}
	s.model.Observe(value)
	return nil
}

// Forecast retrains the series model from points and projects it
// horizon steps ahead. Forecast timestamps extend the series at its
// average sampling interval.
func (e *Engine) Forecast(deviceID string, metric telemetry.MetricKind, points []telemetry.SamplePoint, horizon int, confidence float64) (*telemetry.Prediction, error) {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	model, err := Train(values, e.opts)
	if err != nil {
		return nil, fmt.Errorf("forecast %s/%s: %w", deviceID, metric, err)
	}

	s := e.slotFor(seriesKey(deviceID, metric))
	s.mu.Lock()
	s.model = model
	steps := model.Forecast(horizon, confidence)
	s.mu.Unlock()

	interval := sampleInterval(points)
	last := points[len(points)-1].Timestamp

	prediction := &telemetry.Prediction{
		Metric:     metric,
		Forecast:   make([]telemetry.ForecastPoint, len(steps)),
		Confidence: confidence,
	}
	for i, step := range steps {
		prediction.Forecast[i] = telemetry.ForecastPoint{
			Timestamp: last.Add(time.Duration(i+1) * interval),
			Value:     step.Value,
			Lower:     step.Lower,
			Upper:     step.Upper,
		}
	}
	return prediction, nil
}

func sampleInterval(points []telemetry.SamplePoint) time.Duration {
	if len(points) < 2 {
		return defaultSampleInterval
	}
	span := points[len(points)-1].Timestamp.Sub(points[0].Timestamp)
	interval := span / time.Duration(len(points)-1)
	if interval <= 0 {
		return defaultSampleInterval
	}
	return interval
}

// Count returns the number of trained series models.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, s := range e.slots {
		s.mu.Lock()
		if s.model != nil {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Forget drops the model for one series.
func (e *Engine) Forget(deviceID string, metric telemetry.MetricKind) {
	e.mu.Lock()
	delete(e.slots, seriesKey(deviceID, metric))
	e.mu.Unlock()
}
