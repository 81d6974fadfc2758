package analyzer

import "github.com/prometheus/client_golang/prometheus"

// Prometheus analytics metrics. Collectors register on the default
// registry; the embedding process decides how to expose them.
var (
	batchesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowsight_analyzer_batches_total",
			Help: "Total number of metric batches processed.",
		},
	)
	anomaliesDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsight_analyzer_anomalies_total",
			Help: "Total number of anomalies detected.",
		},
		[]string{"severity"},
	)
	forecastsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowsight_analyzer_forecasts_total",
			Help: "Total number of forecasts generated.",
		},
	)
	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowsight_analyzer_batch_duration_seconds",
			Help:    "Time spent processing one metric batch.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(batchesProcessedTotal)
	prometheus.MustRegister(anomaliesDetectedTotal)
	prometheus.MustRegister(forecastsGeneratedTotal)
	prometheus.MustRegister(batchDuration)
}
