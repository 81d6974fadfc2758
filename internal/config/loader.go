package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables.
// A missing config file is not an error; defaults apply.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/flowsight.db")

	// Analyzer plugin defaults
	v.SetDefault("plugins.analyzer.enabled", true)
	v.SetDefault("plugins.analyzer.min_data_points", 5)
	v.SetDefault("plugins.analyzer.stable_slope_threshold", 0.1)
	v.SetDefault("plugins.analyzer.z_threshold", 2.5)
	v.SetDefault("plugins.analyzer.critical_multiplier", 1.5)
	v.SetDefault("plugins.analyzer.seasonal_period", 24)
	v.SetDefault("plugins.analyzer.alpha", 0.2)
	v.SetDefault("plugins.analyzer.beta", 0.1)
	v.SetDefault("plugins.analyzer.gamma", 0.3)
	v.SetDefault("plugins.analyzer.forecast_horizon", 12)
	v.SetDefault("plugins.analyzer.confidence_level", 0.95)
	v.SetDefault("plugins.analyzer.sample_retention", "720h")
	v.SetDefault("plugins.analyzer.anomaly_retention", "720h")
	v.SetDefault("plugins.analyzer.maintenance_interval", "1h")

	// Replay plugin defaults
	v.SetDefault("plugins.replay.enabled", false)
	v.SetDefault("plugins.replay.path", "")
	v.SetDefault("plugins.replay.rate", 10.0)
	v.SetDefault("plugins.replay.burst", 1)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("flowsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/flowsight")
	}

	// Environment variable support: FS_LOGGING_LEVEL=debug
	v.SetEnvPrefix("FS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
