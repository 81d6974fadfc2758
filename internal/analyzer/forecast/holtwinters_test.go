package forecast

import (
	"errors"
	"math"
	"testing"
)

func squareWave(low, high float64, cycles int) []float64 {
	out := make([]float64, 0, cycles*2)
	for i := 0; i < cycles; i++ {
		out = append(out, low, high)
	}
	return out
}

func TestTrain_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		opts   Options
	}{
		{
			name:   "below minimum points",
			values: []float64{1, 2, 3},
			opts:   Options{SeasonalPeriod: 1, MinDataPoints: 5},
		},
		{
			name:   "below one full period",
			values: []float64{1, 2, 3, 4, 5},
			opts:   Options{SeasonalPeriod: 12, MinDataPoints: 5},
		},
		{
			name:   "empty",
			values: nil,
			opts:   Options{SeasonalPeriod: 1, MinDataPoints: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Train(tt.values, tt.opts)
			if !errors.Is(err, ErrInsufficientTrainingData) {
				t.Errorf("Train err = %v, want ErrInsufficientTrainingData", err)
			}
		})
	}
}

func TestTrain_SquareWaveExactFit(t *testing.T) {
	// A perfect square wave is a fixed point of the smoothing updates:
	// level 15, trend 0, seasonal [2/3, 4/3], every residual zero.
	values := squareWave(10, 20, 6)
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 2, MinDataPoints: 4}

	m, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if m.MSE() > 1e-18 {
		t.Errorf("MSE = %v, want 0 for perfectly periodic input", m.MSE())
	}

	steps := m.Forecast(4, 0.95)
	want := []float64{10, 20, 10, 20}
	for i, step := range steps {
		if math.Abs(step.Value-want[i]) > 1e-9 {
			t.Errorf("Forecast[%d].Value = %v, want %v", i, step.Value, want[i])
		}
		// Zero residual error collapses the interval onto the point.
		if math.Abs(step.Upper-step.Lower) > 1e-9 {
			t.Errorf("Forecast[%d] interval width = %v, want 0", i, step.Upper-step.Lower)
		}
	}
}

func TestTrain_LinearTrendForecastIncreasing(t *testing.T) {
	values := []float64{100, 110, 120, 130, 140, 150}
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 1, MinDataPoints: 5}

	m, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	steps := m.Forecast(2, 0.95)
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].Value <= values[len(values)-1] {
		t.Errorf("step 1 value = %v, want > last observation %v", steps[0].Value, values[len(values)-1])
	}
	if steps[1].Value <= steps[0].Value {
		t.Errorf("step 2 value = %v, want > step 1 value %v", steps[1].Value, steps[0].Value)
	}
	for i, s := range steps {
		if !(s.Lower < s.Value && s.Value < s.Upper) {
			t.Errorf("step %d bounds = [%v, %v] around %v, want strict containment",
				i+1, s.Lower, s.Upper, s.Value)
		}
	}
}

func TestTrain_Deterministic(t *testing.T) {
	values := []float64{5, 9, 4, 11, 6, 8, 5, 10, 4, 12, 7, 9}
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 4, MinDataPoints: 5}

	m1, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	m2, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	s1 := m1.Forecast(6, 0.95)
	s2 := m2.Forecast(6, 0.95)
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Errorf("step %d differs between identical trainings: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

func TestForecast_IntervalWidensWithHorizon(t *testing.T) {
	// Noisy series so the residual MSE is nonzero.
	values := []float64{10, 22, 9, 21, 11, 18, 10, 23, 8, 20, 12, 19}
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 2, MinDataPoints: 5}

	m, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if m.MSE() == 0 {
		t.Fatal("MSE = 0 for noisy series; test needs residual error")
	}

	steps := m.Forecast(5, 0.95)
	for i := 1; i < len(steps); i++ {
		prev := steps[i-1].Upper - steps[i-1].Lower
		cur := steps[i].Upper - steps[i].Lower
		if cur <= prev {
			t.Errorf("interval width at step %d = %v, want > step %d width %v", i+1, cur, i, prev)
		}
	}
}

func TestForecast_ConfidenceLevelScalesInterval(t *testing.T) {
	values := []float64{10, 22, 9, 21, 11, 18, 10, 23, 8, 20}
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 2, MinDataPoints: 5}

	m, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	narrow := m.Forecast(1, 0.90)[0]
	wide := m.Forecast(1, 0.99)[0]
	if wide.Upper-wide.Lower <= narrow.Upper-narrow.Lower {
		t.Errorf("0.99 interval (%v) not wider than 0.90 interval (%v)",
			wide.Upper-wide.Lower, narrow.Upper-narrow.Lower)
	}
}

func TestZQuantile(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.90, 1.645},
		{0.95, 1.96},
		{0.99, 2.576},
		{0.80, 1.96}, // unknown level falls back to 0.95
	}
	for _, tt := range tests {
		if got := zQuantile(tt.confidence); got != tt.want {
			t.Errorf("zQuantile(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestModel_ObserveAdvancesState(t *testing.T) {
	values := squareWave(10, 20, 4)
	opts := Options{Alpha: 0.2, Beta: 0.1, Gamma: 0.3, SeasonalPeriod: 2, MinDataPoints: 4}

	m, err := Train(values, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	before := m.Observations()
	m.Observe(10)
	m.Observe(20)
	if m.Observations() != before+2 {
		t.Errorf("Observations = %d, want %d", m.Observations(), before+2)
	}
}
