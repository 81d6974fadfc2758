package analyzer

// Event topics consumed by the analyzer module.
const (
	TopicSamplesCollected = "telemetry.samples.collected"
)

// Event topics published by the analyzer module.
const (
	TopicAnomalyDetected = "analyzer.anomaly.detected"
	TopicReportGenerated = "analyzer.report.generated"
)
