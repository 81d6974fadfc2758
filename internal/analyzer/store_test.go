package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/flowsight/flowsight/internal/store"
	"github.com/flowsight/flowsight/pkg/telemetry"
)

func testStore(t *testing.T) *AnalyzerStore {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background(), "analyzer", migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAnalyzerStore(db.DB())
}

func TestStore_SampleWindow(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	batch := &telemetry.MetricBatch{
		DeviceID: "dev-1",
		Metrics: map[telemetry.MetricKind][]telemetry.SamplePoint{
			telemetry.MetricLatency: {
				{Timestamp: base, Value: 12.5, Quality: telemetry.QualityHigh},
				{Timestamp: base.Add(time.Hour), Value: 13.1, Quality: telemetry.QualityHigh},
				{Timestamp: base.Add(2 * time.Hour), Value: 11.8, Quality: telemetry.QualityLow},
			},
			telemetry.MetricJitter: {
				{Timestamp: base, Value: 0.4},
			},
		},
	}
	if err := s.InsertSamples(ctx, batch); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}

	points, err := s.GetSampleWindow(ctx, "dev-1", telemetry.MetricLatency, base)
	if err != nil {
		t.Fatalf("GetSampleWindow: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d latency points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			t.Error("sample window not in timestamp order")
		}
	}
	if points[0].Value != 12.5 || points[0].Quality != telemetry.QualityHigh {
		t.Errorf("first point = %+v, want value 12.5 quality high", points[0])
	}

	// The window cutoff excludes earlier samples.
	later, err := s.GetSampleWindow(ctx, "dev-1", telemetry.MetricLatency, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("GetSampleWindow: %v", err)
	}
	if len(later) != 1 {
		t.Errorf("got %d points since cutoff, want 1", len(later))
	}

	// Other devices see nothing.
	other, err := s.GetSampleWindow(ctx, "dev-2", telemetry.MetricLatency, base)
	if err != nil {
		t.Fatalf("GetSampleWindow: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d points for unknown device, want 0", len(other))
	}
}

func TestStore_DeleteOldSamples(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	batch := &telemetry.MetricBatch{
		DeviceID: "dev-1",
		Metrics: map[telemetry.MetricKind][]telemetry.SamplePoint{
			telemetry.MetricBandwidth: {
				{Timestamp: base, Value: 1},
				{Timestamp: base.Add(time.Hour), Value: 2},
				{Timestamp: base.Add(48 * time.Hour), Value: 3},
			},
		},
	}
	if err := s.InsertSamples(ctx, batch); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}

	deleted, err := s.DeleteOldSamples(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldSamples: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	remaining, err := s.GetSampleWindow(ctx, "dev-1", telemetry.MetricBandwidth, base)
	if err != nil {
		t.Fatalf("GetSampleWindow: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("got %d remaining samples, want 1", len(remaining))
	}
}

func TestStore_Anomalies(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	anomalies := []telemetry.Anomaly{
		{ID: "a-1", DeviceID: "dev-1", Metric: telemetry.MetricLatency, Index: 4,
			Timestamp: base, Value: 500, ZScore: 3.2, Severity: telemetry.SeverityCritical, Confidence: 0.64},
		{ID: "a-2", DeviceID: "dev-1", Metric: telemetry.MetricJitter, Index: 1,
			Timestamp: base.Add(time.Hour), Value: 9, ZScore: 2.7, Severity: telemetry.SeverityWarning, Confidence: 0.54},
		{ID: "a-3", DeviceID: "dev-2", Metric: telemetry.MetricLatency, Index: 0,
			Timestamp: base.Add(2 * time.Hour), Value: 42, ZScore: 2.6, Severity: telemetry.SeverityWarning, Confidence: 0.52},
	}
	for i := range anomalies {
		if err := s.InsertAnomaly(ctx, &anomalies[i]); err != nil {
			t.Fatalf("InsertAnomaly: %v", err)
		}
	}

	byDevice, err := s.ListAnomalies(ctx, "dev-1", 10)
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(byDevice) != 2 {
		t.Fatalf("got %d anomalies for dev-1, want 2", len(byDevice))
	}
	// Newest first.
	if byDevice[0].ID != "a-2" {
		t.Errorf("first anomaly = %q, want a-2 (newest)", byDevice[0].ID)
	}
	if byDevice[1].Metric != telemetry.MetricLatency || byDevice[1].Severity != telemetry.SeverityCritical {
		t.Errorf("round-tripped anomaly = %+v, want latency/critical", byDevice[1])
	}

	all, err := s.ListAnomalies(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListAnomalies all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d anomalies across devices, want 3", len(all))
	}

	limited, err := s.ListAnomalies(ctx, "", 1)
	if err != nil {
		t.Fatalf("ListAnomalies limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d anomalies with limit 1, want 1", len(limited))
	}

	deleted, err := s.DeleteOldAnomalies(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("DeleteOldAnomalies: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
}

func TestStore_Reports(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	report := &telemetry.AnalysisReport{
		ID:          "r-1",
		DeviceID:    "dev-1",
		GeneratedAt: base,
		Trends: map[telemetry.MetricKind]telemetry.TrendResult{
			telemetry.MetricLatency: {Direction: telemetry.TrendIncreasing, Slope: 2.5, Confidence: 0.8},
		},
		Anomalies: []telemetry.Anomaly{
			{ID: "a-1", DeviceID: "dev-1", Metric: telemetry.MetricLatency, Value: 500},
		},
	}
	if err := s.InsertReport(ctx, report); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}
	second := *report
	second.ID = "r-2"
	second.GeneratedAt = base.Add(time.Hour)
	if err := s.InsertReport(ctx, &second); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}

	reports, err := s.ListReports(ctx, "dev-1", 10)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].ID != "r-2" {
		t.Errorf("first report = %q, want r-2 (newest)", reports[0].ID)
	}

	got := reports[1]
	if got.Trends[telemetry.MetricLatency].Direction != telemetry.TrendIncreasing {
		t.Errorf("round-tripped trend = %+v, want increasing", got.Trends[telemetry.MetricLatency])
	}
	if len(got.Anomalies) != 1 || got.Anomalies[0].ID != "a-1" {
		t.Errorf("round-tripped anomalies = %+v, want single a-1", got.Anomalies)
	}

	deleted, err := s.DeleteOldReports(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("DeleteOldReports: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
