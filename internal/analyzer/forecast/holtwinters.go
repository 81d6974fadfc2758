// Package forecast implements multiplicative Holt-Winters triple
// exponential smoothing with confidence intervals derived from the
// in-sample residual error.
package forecast

import (
	"errors"
	"math"
)

// ErrInsufficientTrainingData is returned when the training history is
// shorter than both the minimum point count and one full seasonal
// period.
var ErrInsufficientTrainingData = errors.New("insufficient training data")

// Defaults applied when Options carries zero values.
const (
	DefaultAlpha          = 0.2
	DefaultBeta           = 0.1
	DefaultGamma          = 0.3
	DefaultSeasonalPeriod = 24
	DefaultMinDataPoints  = 5
)

// zTable maps common confidence levels to normal quantiles. Levels not
// in the table fall back to 0.95.
var zTable = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

func zQuantile(confidence float64) float64 {
	if z, ok := zTable[confidence]; ok {
		return z
	}
	return zTable[0.95]
}

// Options are the smoothing parameters for a Holt-Winters model.
type Options struct {
	Alpha          float64 // Level smoothing, (0,1)
	Beta           float64 // Trend smoothing, (0,1)
	Gamma          float64 // Seasonal smoothing, (0,1)
	SeasonalPeriod int
	MinDataPoints  int
}

func (o Options) withDefaults() Options {
	if o.Alpha <= 0 || o.Alpha >= 1 {
		o.Alpha = DefaultAlpha
	}
	if o.Beta <= 0 || o.Beta >= 1 {
		o.Beta = DefaultBeta
	}
	if o.Gamma <= 0 || o.Gamma >= 1 {
		o.Gamma = DefaultGamma
	}
	if o.SeasonalPeriod < 1 {
		o.SeasonalPeriod = DefaultSeasonalPeriod
	}
	if o.MinDataPoints < 2 {
		o.MinDataPoints = DefaultMinDataPoints
	}
	return o
}

// Model holds the smoothed state for one (device, metric) series.
// Observations must arrive in timestamp order; out-of-order input is a
// caller contract violation.
type Model struct {
	opts     Options
	level    float64
	trend    float64
	seasonal []float64
	n        int     // observations consumed since training
	sse      float64 // accumulated one-step-ahead squared residuals
}

// Step is one horizon step of a forecast with its confidence bounds.
type Step struct {
	Value float64
	Lower float64
	Upper float64
}

// Train fits a fresh model by initializing level, trend, and seasonal
// indices from the history and then replaying every point through the
// smoothing updates. Training the same history twice yields identical
// state.
func Train(values []float64, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	need := opts.MinDataPoints
	if opts.SeasonalPeriod > need {
		need = opts.SeasonalPeriod
	}
	if len(values) < need {
		return nil, ErrInsufficientTrainingData
	}

	m := &Model{opts: opts}
	m.initialize(values)
	for _, y := range values {
		m.Observe(y)
	}
	return m, nil
}

func (m *Model) initialize(values []float64) {
	p := m.opts.SeasonalPeriod

	var sum float64
	for _, v := range values[:p] {
		sum += v
	}
	m.level = sum / float64(p)

	// Trend from period-over-period differences when a second full
	// period exists, otherwise from successive differences.
	if len(values) >= 2*p {
		var t float64
		for i := 0; i < p; i++ {
			t += (values[p+i] - values[i]) / float64(p)
		}
		m.trend = t / float64(p)
	} else if len(values) > 1 {
		var t float64
		for i := 1; i < len(values); i++ {
			t += values[i] - values[i-1]
		}
		m.trend = t / float64(len(values)-1)
	}

	// Seasonal indices: average each point's ratio to its own cycle
	// mean, per cycle position, normalized to mean 1.
	ratioSum := make([]float64, p)
	ratioCount := make([]int, p)
	for cycle := 0; cycle+p <= len(values); cycle += p {
		var cycleSum float64
		for _, v := range values[cycle : cycle+p] {
			cycleSum += v
		}
		cycleMean := cycleSum / float64(p)
		if cycleMean == 0 {
			continue
		}
		for i := 0; i < p; i++ {
			ratioSum[i] += values[cycle+i] / cycleMean
			ratioCount[i]++
		}
	}

	m.seasonal = make([]float64, p)
	var total float64
	for i := range m.seasonal {
		if ratioCount[i] > 0 {
			m.seasonal[i] = ratioSum[i] / float64(ratioCount[i])
		} else {
			m.seasonal[i] = 1
		}
		total += m.seasonal[i]
	}
	if total > 0 {
		scale := float64(p) / total
		for i := range m.seasonal {
			m.seasonal[i] *= scale
		}
	}

	m.n = 0
	m.sse = 0
}

// Observe feeds one sample through the smoothing updates, accumulating
// the one-step-ahead residual into the error estimate. Incremental
// observation is cheaper than retraining but drifts over time; callers
// that need determinism should retrain from raw history instead.
func (m *Model) Observe(y float64) {
	idx := m.n % m.opts.SeasonalPeriod
	s := m.seasonal[idx]
	if s == 0 {
		s = 1
	}

	fitted := (m.level + m.trend) * s
	resid := y - fitted
	m.sse += resid * resid

	prevLevel := m.level
	m.level = m.opts.Alpha*(y/s) + (1-m.opts.Alpha)*(m.level+m.trend)
	m.trend = m.opts.Beta*(m.level-prevLevel) + (1-m.opts.Beta)*m.trend
	if m.level != 0 {
		m.seasonal[idx] = m.opts.Gamma*(y/m.level) + (1-m.opts.Gamma)*m.seasonal[idx]
	}
	m.n++
}

// Observations returns the number of samples the model has consumed.
func (m *Model) Observations() int { return m.n }

// MSE returns the mean squared one-step-ahead residual over the
// observed history.
func (m *Model) MSE() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sse / float64(m.n)
}

// Forecast projects the model `steps` periods ahead. The interval
// half-width for step h is z*sqrt(MSE*(1 + h(h+1)/(2n))), widening with
// the horizon.
func (m *Model) Forecast(steps int, confidence float64) []Step {
	if steps <= 0 || m.n == 0 {
		return nil
	}

	z := zQuantile(confidence)
	mse := m.MSE()
	p := m.opts.SeasonalPeriod

	out := make([]Step, steps)
	for h := 1; h <= steps; h++ {
		s := m.seasonal[(m.n+h-1)%p]
		if s == 0 {
			s = 1
		}
		value := (m.level + float64(h)*m.trend) * s
		hw := z * math.Sqrt(mse*(1+float64(h)*float64(h+1)/(2*float64(m.n))))
		out[h-1] = Step{Value: value, Lower: value - hw, Upper: value + hw}
	}
	return out
}
