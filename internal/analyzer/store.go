package analyzer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowsight/flowsight/pkg/telemetry"
)

// AnalyzerStore provides database access for the analyzer plugin. Raw
// samples are retained so forecast models can be retrained from
// history; reports are stored as JSON documents.
type AnalyzerStore struct {
	db *sql.DB
}

// NewAnalyzerStore creates a store backed by the given database.
func NewAnalyzerStore(db *sql.DB) *AnalyzerStore {
	return &AnalyzerStore{db: db}
}

// -- Samples --

// InsertSamples stores every sample in a batch inside one transaction.
func (s *AnalyzerStore) InsertSamples(ctx context.Context, batch *telemetry.MetricBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert samples: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analyzer_samples (device_id, metric, value, quality, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert samples: %w", err)
	}
	defer stmt.Close()

	for kind, points := range batch.Metrics {
		for _, p := range points {
			if _, err := stmt.ExecContext(ctx,
				batch.DeviceID, string(kind), p.Value, string(p.Quality), p.Timestamp,
			); err != nil {
				return fmt.Errorf("insert sample: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert samples: %w", err)
	}
	return nil
}

// GetSampleWindow returns samples for one device+metric since the
// given time, ordered by timestamp.
func (s *AnalyzerStore) GetSampleWindow(ctx context.Context, deviceID string, metric telemetry.MetricKind, since time.Time) ([]telemetry.SamplePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, quality, timestamp
		FROM analyzer_samples
		WHERE device_id = ? AND metric = ? AND timestamp >= ?
		ORDER BY timestamp`,
		deviceID, string(metric), since,
	)
	if err != nil {
		return nil, fmt.Errorf("get sample window: %w", err)
	}
	defer rows.Close()

	var points []telemetry.SamplePoint
	for rows.Next() {
		var p telemetry.SamplePoint
		var quality string
		if err := rows.Scan(&p.Value, &quality, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		p.Quality = telemetry.Quality(quality)
		points = append(points, p)
	}
	return points, rows.Err()
}

// DeleteOldSamples deletes samples older than the given time. Returns
// the number of rows deleted.
func (s *AnalyzerStore) DeleteOldSamples(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyzer_samples WHERE timestamp < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old samples: %w", err)
	}
	return result.RowsAffected()
}

// -- Anomalies --

// InsertAnomaly inserts a new anomaly record.
func (s *AnalyzerStore) InsertAnomaly(ctx context.Context, a *telemetry.Anomaly) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyzer_anomalies (
			id, device_id, metric, series_index, value, z_score,
			severity, confidence, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DeviceID, string(a.Metric), a.Index, a.Value, a.ZScore,
		a.Severity, a.Confidence, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert anomaly: %w", err)
	}
	return nil
}

// ListAnomalies returns anomalies ordered by detection time
// descending. Pass empty deviceID to list across all devices.
func (s *AnalyzerStore) ListAnomalies(ctx context.Context, deviceID string, limit int) ([]telemetry.Anomaly, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if deviceID == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, device_id, metric, series_index, value, z_score,
				severity, confidence, detected_at
			FROM analyzer_anomalies ORDER BY detected_at DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, device_id, metric, series_index, value, z_score,
				severity, confidence, detected_at
			FROM analyzer_anomalies WHERE device_id = ?
			ORDER BY detected_at DESC LIMIT ?`,
			deviceID, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []telemetry.Anomaly
	for rows.Next() {
		var a telemetry.Anomaly
		var metric string
		if err := rows.Scan(
			&a.ID, &a.DeviceID, &metric, &a.Index, &a.Value, &a.ZScore,
			&a.Severity, &a.Confidence, &a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan anomaly row: %w", err)
		}
		a.Metric = telemetry.MetricKind(metric)
		anomalies = append(anomalies, a)
	}
	return anomalies, rows.Err()
}

// DeleteOldAnomalies deletes anomalies detected before the given time.
// Returns the number of rows deleted.
func (s *AnalyzerStore) DeleteOldAnomalies(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyzer_anomalies WHERE detected_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old anomalies: %w", err)
	}
	return result.RowsAffected()
}

// -- Reports --

// InsertReport stores an analysis report as a JSON document.
func (s *AnalyzerStore) InsertReport(ctx context.Context, r *telemetry.AnalysisReport) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyzer_reports (id, device_id, generated_at, report)
		VALUES (?, ?, ?, ?)`,
		r.ID, r.DeviceID, r.GeneratedAt, string(doc),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListReports returns stored reports for a device, newest first.
func (s *AnalyzerStore) ListReports(ctx context.Context, deviceID string, limit int) ([]telemetry.AnalysisReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM analyzer_reports
		WHERE device_id = ? ORDER BY generated_at DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []telemetry.AnalysisReport
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		var r telemetry.AnalysisReport
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// DeleteOldReports deletes reports generated before the given time.
func (s *AnalyzerStore) DeleteOldReports(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyzer_reports WHERE generated_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old reports: %w", err)
	}
	return result.RowsAffected()
}
