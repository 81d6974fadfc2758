// Package analyzer implements the FlowSight analytics plugin: trend
// classification, z-score anomaly detection, seasonal decomposition,
// and Holt-Winters forecasting over device telemetry.
package analyzer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flowsight/flowsight/pkg/plugin"
	"github.com/flowsight/flowsight/pkg/roles"
	"github.com/flowsight/flowsight/pkg/telemetry"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin           = (*Module)(nil)
	_ plugin.HealthChecker    = (*Module)(nil)
	_ plugin.EventSubscriber  = (*Module)(nil)
	_ roles.AnalyticsProvider = (*Module)(nil)
)

// Module implements the analyzer plugin.
type Module struct {
	logger       *zap.Logger
	cfg          AnalyzerConfig
	store        *AnalyzerStore
	bus          plugin.EventBus
	orchestrator *Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new analyzer plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "analyzer",
		Version:     "0.1.0",
		Description: "Telemetry trend, anomaly, and forecast analytics",
		Roles:       []string{roles.RoleAnalytics},
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal analyzer config: %w", err)
		}
	}

	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "analyzer", migrations()); err != nil {
			return fmt.Errorf("analyzer migrations: %w", err)
		}
		m.store = NewAnalyzerStore(deps.Store.DB())
	}

	m.bus = deps.Bus
	m.orchestrator = NewOrchestrator(m.cfg)

	m.logger.Info("analyzer module initialized",
		zap.Int("min_data_points", m.cfg.MinDataPoints),
		zap.Float64("z_threshold", m.cfg.ZThreshold),
		zap.Int("seasonal_period", m.cfg.SeasonalPeriod),
		zap.Int("forecast_horizon", m.cfg.ForecastHorizon),
		zap.Float64("confidence_level", m.cfg.ConfidenceLevel),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.startMaintenance()
	m.logger.Info("analyzer module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("analyzer module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	models := 0
	if m.orchestrator != nil {
		models = m.orchestrator.Forecasts().Count()
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"forecast_models": strconv.Itoa(models),
		},
	}
}

// -- plugin.EventSubscriber --

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: TopicSamplesCollected, Handler: m.handleSamplesCollected},
	}
}

// handleSamplesCollected is the analytics pipeline entry point: persist
// the raw samples, run one analytics pass, persist and publish the
// results.
func (m *Module) handleSamplesCollected(_ context.Context, event plugin.Event) {
	batch, ok := event.Payload.(*telemetry.MetricBatch)
	if !ok {
		m.logger.Debug("ignored samples event: unexpected payload type",
			zap.String("source", event.Source))
		return
	}

	if _, err := m.AnalyzeBatch(batch); err != nil {
		m.logger.Warn("rejected metric batch",
			zap.String("source", event.Source),
			zap.Error(err))
	}
}

// AnalyzeBatch runs the full pipeline for one batch: store samples,
// process, persist anomalies and report, publish events.
func (m *Module) AnalyzeBatch(batch *telemetry.MetricBatch) (*telemetry.AnalysisReport, error) {
	report, err := m.orchestrator.ProcessBatch(batch)
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.baseContext(), 10*time.Second)
		defer cancel()

		if err := m.store.InsertSamples(ctx, batch); err != nil {
			m.logger.Warn("failed to store samples", zap.Error(err))
		}
		for i := range report.Anomalies {
			if err := m.store.InsertAnomaly(ctx, &report.Anomalies[i]); err != nil {
				m.logger.Warn("failed to store anomaly", zap.Error(err))
			}
		}
		if err := m.store.InsertReport(ctx, report); err != nil {
			m.logger.Warn("failed to store report", zap.Error(err))
		}
	}

	for i := range report.Anomalies {
		a := report.Anomalies[i]
		m.logger.Info("anomaly detected",
			zap.String("device_id", a.DeviceID),
			zap.String("metric", string(a.Metric)),
			zap.String("severity", a.Severity),
			zap.Float64("value", a.Value),
			zap.Float64("z_score", a.ZScore),
		)
		if m.bus != nil {
			m.bus.PublishAsync(m.baseContext(), plugin.Event{
				Topic:   TopicAnomalyDetected,
				Source:  "analyzer",
				Payload: a,
			})
		}
	}

	if m.bus != nil {
		m.bus.PublishAsync(m.baseContext(), plugin.Event{
			Topic:   TopicReportGenerated,
			Source:  "analyzer",
			Payload: report,
		})
	}
	return report, nil
}

// baseContext returns the module lifetime context, or Background before
// Start (direct AnalyzeBatch calls in tests).
func (m *Module) baseContext() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// -- roles.AnalyticsProvider --

// Analyze implements roles.AnalyticsProvider.
func (m *Module) Analyze(_ context.Context, batch *telemetry.MetricBatch) (*telemetry.AnalysisReport, error) {
	return m.AnalyzeBatch(batch)
}

// Anomalies implements roles.AnalyticsProvider.
func (m *Module) Anomalies(ctx context.Context, deviceID string) ([]telemetry.Anomaly, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListAnomalies(ctx, deviceID, 100)
}

// Reports implements roles.AnalyticsProvider.
func (m *Module) Reports(ctx context.Context, deviceID string) ([]telemetry.AnalysisReport, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListReports(ctx, deviceID, 20)
}
