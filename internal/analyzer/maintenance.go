package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// startMaintenance launches a background goroutine that periodically
// purges samples, anomalies, and reports past their retention windows.
func (m *Module) startMaintenance() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.MaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.runMaintenance()
			}
		}
	}()
}

// runMaintenance executes a single maintenance cycle.
func (m *Module) runMaintenance() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
	defer cancel()

	sampleCutoff := time.Now().Add(-m.cfg.SampleRetention)
	deleted, err := m.store.DeleteOldSamples(ctx, sampleCutoff)
	if err != nil {
		m.logger.Warn("failed to delete old samples", zap.Error(err))
	} else if deleted > 0 {
		m.logger.Info("purged old samples", zap.Int64("count", deleted))
	}

	anomalyCutoff := time.Now().Add(-m.cfg.AnomalyRetention)
	deleted, err = m.store.DeleteOldAnomalies(ctx, anomalyCutoff)
	if err != nil {
		m.logger.Warn("failed to delete old anomalies", zap.Error(err))
	} else if deleted > 0 {
		m.logger.Info("purged old anomalies", zap.Int64("count", deleted))
	}

	deleted, err = m.store.DeleteOldReports(ctx, anomalyCutoff)
	if err != nil {
		m.logger.Warn("failed to delete old reports", zap.Error(err))
	} else if deleted > 0 {
		m.logger.Info("purged old reports", zap.Int64("count", deleted))
	}
}
