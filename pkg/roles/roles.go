// Package roles defines typed contracts for plugin roles.
// Plugins that fill a role (declared via PluginInfo.Roles) should implement
// the corresponding interface so callers can use type-safe access via
// PluginResolver.ResolveByRole followed by a type assertion.
package roles

import (
	"context"

	"github.com/flowsight/flowsight/pkg/telemetry"
)

// Role name constants match the strings used in PluginInfo.Roles.
const (
	RoleAnalytics = "analytics"
	RoleIngest    = "ingest"
)

// AnalyticsProvider is implemented by plugins that analyze telemetry.
// Resolve via PluginResolver.ResolveByRole(RoleAnalytics) then type-assert.
type AnalyticsProvider interface {
	// Analyze runs one analytics pass over a metric batch and returns
	// the unified report.
	Analyze(ctx context.Context, batch *telemetry.MetricBatch) (*telemetry.AnalysisReport, error)

	// Anomalies returns recently detected anomalies, optionally filtered
	// by device. Pass empty deviceID to list all.
	Anomalies(ctx context.Context, deviceID string) ([]telemetry.Anomaly, error)

	// Reports returns stored analysis reports for a device.
	Reports(ctx context.Context, deviceID string) ([]telemetry.AnalysisReport, error)
}

// IngestProvider is implemented by plugins that feed sample batches onto
// the event bus from an upstream source.
type IngestProvider interface {
	// Ingested returns the number of batches published so far.
	Ingested() int64
}
