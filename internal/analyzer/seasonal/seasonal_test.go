package seasonal

import (
	"math"
	"testing"
)

func repeat(pattern []float64, cycles int) []float64 {
	out := make([]float64, 0, len(pattern)*cycles)
	for i := 0; i < cycles; i++ {
		out = append(out, pattern...)
	}
	return out
}

func TestDecomposeValues_PurePeriodicSeries(t *testing.T) {
	d := NewDecomposer(4)
	values := repeat([]float64{10, 20, 30, 20}, 3)

	comps := d.DecomposeValues(values)

	if !comps.Stable {
		t.Fatal("Stable = false, want true with three full periods")
	}
	if comps.Period != 4 {
		t.Errorf("Period = %d, want 4", comps.Period)
	}

	// Any period-length window of a repeating pattern averages to the
	// pattern mean, so the trend is flat at 20 where defined.
	for i, tr := range comps.Trend {
		if tr == 0 {
			continue
		}
		if math.Abs(tr-20) > 1e-9 {
			t.Errorf("Trend[%d] = %v, want 20", i, tr)
		}
	}

	wantIndices := []float64{0.5, 1.0, 1.5, 1.0}
	for i := range values {
		want := wantIndices[i%4]
		if math.Abs(comps.Seasonal[i]-want) > 1e-9 {
			t.Errorf("Seasonal[%d] = %v, want %v", i, comps.Seasonal[i], want)
		}
	}
}

func TestDecomposeValues_Recombination(t *testing.T) {
	d := NewDecomposer(4)
	values := repeat([]float64{10, 20, 30, 20}, 4)

	comps := d.DecomposeValues(values)

	for i := range values {
		if comps.Trend[i] == 0 {
			continue // Window overran the boundary; nothing to recombine.
		}
		got := comps.Trend[i] * comps.Seasonal[i] * comps.Residual[i]
		if math.Abs(got-values[i]) > 1e-6 {
			t.Errorf("recombined[%d] = %v, want %v", i, got, values[i])
		}
	}
}

func TestDecomposeValues_IndicesMeanOne(t *testing.T) {
	d := NewDecomposer(6)
	// Noisy periodic series with an upward drift.
	base := []float64{50, 80, 120, 140, 90, 60}
	values := make([]float64, 0, 24)
	for cycle := 0; cycle < 4; cycle++ {
		for _, v := range base {
			values = append(values, v+float64(cycle)*5)
		}
	}

	comps := d.DecomposeValues(values)

	var sum float64
	for pos := 0; pos < comps.Period; pos++ {
		sum += comps.Seasonal[pos]
	}
	if math.Abs(sum/float64(comps.Period)-1) > 1e-9 {
		t.Errorf("seasonal index mean = %v, want 1", sum/float64(comps.Period))
	}
}

func TestDecomposeValues_SeasonalTiling(t *testing.T) {
	d := NewDecomposer(4)
	values := repeat([]float64{10, 20, 30, 20}, 3)

	comps := d.DecomposeValues(values)

	for i := range values {
		if comps.Seasonal[i] != comps.Seasonal[i%4] {
			t.Errorf("Seasonal[%d] = %v, want tile of Seasonal[%d] = %v",
				i, comps.Seasonal[i], i%4, comps.Seasonal[i%4])
		}
	}
}

func TestDecomposeValues_InsufficientPeriods(t *testing.T) {
	d := NewDecomposer(24)
	values := make([]float64, 30) // barely over one period
	for i := range values {
		values[i] = float64(i)
	}

	comps := d.DecomposeValues(values)

	if comps.Stable {
		t.Error("Stable = true, want false with under two full periods")
	}
	for i, s := range comps.Seasonal {
		if s != 1 {
			t.Errorf("Seasonal[%d] = %v, want 1", i, s)
		}
	}
	for i := range values {
		if comps.Trend[i] != 0 || comps.Residual[i] != 0 {
			t.Errorf("Trend[%d]=%v Residual[%d]=%v, want 0 without enough data",
				i, comps.Trend[i], i, comps.Residual[i])
		}
	}
}

func TestDecomposeValues_OutputLengths(t *testing.T) {
	d := NewDecomposer(4)
	values := repeat([]float64{1, 2, 3, 4}, 3)

	comps := d.DecomposeValues(values)

	if len(comps.Trend) != len(values) ||
		len(comps.Seasonal) != len(values) ||
		len(comps.Residual) != len(values) {
		t.Errorf("component lengths = %d/%d/%d, want all %d",
			len(comps.Trend), len(comps.Seasonal), len(comps.Residual), len(values))
	}
}

func TestNewDecomposer_Defaults(t *testing.T) {
	d := NewDecomposer(0)
	if d.Period != DefaultPeriod {
		t.Errorf("Period = %d, want %d", d.Period, DefaultPeriod)
	}
}
