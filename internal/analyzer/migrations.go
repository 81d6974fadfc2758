package analyzer

import (
	"database/sql"

	"github.com/flowsight/flowsight/pkg/plugin"
)

// migrations returns the analyzer module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create analyzer tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS analyzer_samples (
						id         INTEGER PRIMARY KEY AUTOINCREMENT,
						device_id  TEXT NOT NULL,
						metric     TEXT NOT NULL,
						value      REAL NOT NULL,
						quality    TEXT NOT NULL DEFAULT '',
						timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_samples_series ON analyzer_samples(device_id, metric, timestamp)`,

					`CREATE TABLE IF NOT EXISTS analyzer_anomalies (
						id           TEXT PRIMARY KEY,
						device_id    TEXT NOT NULL,
						metric       TEXT NOT NULL,
						series_index INTEGER NOT NULL DEFAULT 0,
						value        REAL NOT NULL,
						z_score      REAL NOT NULL,
						severity     TEXT NOT NULL DEFAULT 'warning',
						confidence   REAL NOT NULL DEFAULT 0,
						detected_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_anomalies_device ON analyzer_anomalies(device_id)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_anomalies_detected ON analyzer_anomalies(detected_at)`,

					`CREATE TABLE IF NOT EXISTS analyzer_reports (
						id           TEXT PRIMARY KEY,
						device_id    TEXT NOT NULL,
						generated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						report       TEXT NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_reports_device ON analyzer_reports(device_id, generated_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
