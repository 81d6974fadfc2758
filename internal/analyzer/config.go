package analyzer

import "time"

// AnalyzerConfig holds configuration for the analyzer plugin.
type AnalyzerConfig struct {
	MinDataPoints        int     `mapstructure:"min_data_points"`
	StableSlopeThreshold float64 `mapstructure:"stable_slope_threshold"`
	ZThreshold           float64 `mapstructure:"z_threshold"`
	CriticalMultiplier   float64 `mapstructure:"critical_multiplier"`
	SeasonalPeriod       int     `mapstructure:"seasonal_period"`

	// Holt-Winters smoothing parameters.
	Alpha float64 `mapstructure:"alpha"` // Level smoothing (0-1)
	Beta  float64 `mapstructure:"beta"`  // Trend smoothing (0-1)
	Gamma float64 `mapstructure:"gamma"` // Seasonal smoothing (0-1)

	ForecastHorizon int     `mapstructure:"forecast_horizon"`
	ConfidenceLevel float64 `mapstructure:"confidence_level"`

	SampleRetention     time.Duration `mapstructure:"sample_retention"`
	AnomalyRetention    time.Duration `mapstructure:"anomaly_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns sensible defaults for the analyzer module.
func DefaultConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinDataPoints:        5,
		StableSlopeThreshold: 0.1,
		ZThreshold:           2.5,
		CriticalMultiplier:   1.5,
		SeasonalPeriod:       24,

		Alpha: 0.2,
		Beta:  0.1,
		Gamma: 0.3,

		ForecastHorizon: 12,
		ConfidenceLevel: 0.95,

		SampleRetention:     30 * 24 * time.Hour,
		AnomalyRetention:    30 * 24 * time.Hour,
		MaintenanceInterval: 1 * time.Hour,
	}
}
