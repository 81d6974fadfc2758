package trend

import (
	"math"
	"testing"

	"github.com/flowsight/flowsight/pkg/telemetry"
)

func TestAnalyzeValues_Directions(t *testing.T) {
	a := NewAnalyzer(3, 0.1)

	tests := []struct {
		name          string
		values        []float64
		wantDirection telemetry.TrendDirection
	}{
		{
			name:          "arithmetic increase",
			values:        []float64{10, 20, 30, 40, 50},
			wantDirection: telemetry.TrendIncreasing,
		},
		{
			name:          "arithmetic decrease",
			values:        []float64{50, 40, 30, 20, 10},
			wantDirection: telemetry.TrendDecreasing,
		},
		{
			name:          "daily samples rising",
			values:        []float64{100, 120, 140},
			wantDirection: telemetry.TrendIncreasing,
		},
		{
			name:          "noise below slope threshold",
			values:        []float64{10, 10.01, 9.99, 10.02, 10},
			wantDirection: telemetry.TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeValues(tt.values)
			if got.Direction != tt.wantDirection {
				t.Errorf("Direction = %q, want %q (slope=%v)", got.Direction, tt.wantDirection, got.Slope)
			}
		})
	}
}

func TestAnalyzeValues_IncreasingHasPositiveSlope(t *testing.T) {
	a := NewAnalyzer(3, 0.1)
	got := a.AnalyzeValues([]float64{100, 120, 140})
	if got.Slope <= 0 {
		t.Errorf("Slope = %v, want > 0", got.Slope)
	}
	if !(got.Confidence > 0 && got.Confidence <= 1) {
		t.Errorf("Confidence = %v, want in (0, 1]", got.Confidence)
	}
}

func TestAnalyzeValues_ConstantSeries(t *testing.T) {
	a := NewAnalyzer(3, 0.1)
	got := a.AnalyzeValues([]float64{5, 5, 5, 5, 5})
	if got.Direction != telemetry.TrendStable {
		t.Errorf("Direction = %q, want stable", got.Direction)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for flat series", got.Confidence)
	}
	if got.Slope != 0 {
		t.Errorf("Slope = %v, want 0 for flat series", got.Slope)
	}
}

func TestAnalyzeValues_TooFewPoints(t *testing.T) {
	a := NewAnalyzer(5, 0.1)
	got := a.AnalyzeValues([]float64{1, 2, 3})
	if got.Direction != telemetry.TrendUnknown {
		t.Errorf("Direction = %q, want unknown", got.Direction)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestAnalyzeValues_ConfidenceCappedAtOne(t *testing.T) {
	a := NewAnalyzer(3, 0.1)
	// Slope (1000 per step) dwarfs the value range normalization only if
	// range were smaller; verify the cap holds regardless.
	got := a.AnalyzeValues([]float64{0, 1000, 2000, 3000})
	if got.Confidence > 1 {
		t.Errorf("Confidence = %v, want <= 1", got.Confidence)
	}
}

func TestAnalyzeValues_SlopeMatchesLeastSquares(t *testing.T) {
	a := NewAnalyzer(2, 0.001)
	// y = 3 + 2x exactly: slope must be 2.
	got := a.AnalyzeValues([]float64{3, 5, 7, 9, 11})
	if math.Abs(got.Slope-2) > 1e-9 {
		t.Errorf("Slope = %v, want 2", got.Slope)
	}
}

func TestAnalyze_UsesSampleValues(t *testing.T) {
	a := NewAnalyzer(3, 0.1)
	points := []telemetry.SamplePoint{
		{Value: 100}, {Value: 120}, {Value: 140},
	}
	got := a.Analyze(points)
	if got.Direction != telemetry.TrendIncreasing {
		t.Errorf("Direction = %q, want increasing", got.Direction)
	}
}

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(0, 0)
	if a.MinDataPoints != DefaultMinDataPoints {
		t.Errorf("MinDataPoints = %d, want %d", a.MinDataPoints, DefaultMinDataPoints)
	}
	if a.StableSlopeThreshold != DefaultStableSlopeThreshold {
		t.Errorf("StableSlopeThreshold = %v, want %v", a.StableSlopeThreshold, DefaultStableSlopeThreshold)
	}
}
