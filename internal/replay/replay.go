// Package replay implements the sample replay plugin: it reads metric
// batches from a JSONL file and publishes them onto the event bus at a
// configured rate, standing in for a live collector during development
// and load testing.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/flowsight/flowsight/pkg/plugin"
	"github.com/flowsight/flowsight/pkg/roles"
	"github.com/flowsight/flowsight/pkg/telemetry"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 1 << 20

// TopicSamplesCollected is the topic replayed batches are published on.
const TopicSamplesCollected = "telemetry.samples.collected"

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ roles.IngestProvider = (*Module)(nil)
)

// ReplayConfig holds configuration for the replay plugin.
type ReplayConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Path    string  `mapstructure:"path"`  // JSONL file of MetricBatch records
	Rate    float64 `mapstructure:"rate"`  // Batches per second
	Burst   int     `mapstructure:"burst"` // Limiter burst size
}

// DefaultConfig returns sensible defaults for the replay module.
func DefaultConfig() ReplayConfig {
	return ReplayConfig{
		Enabled: false,
		Rate:    10,
		Burst:   1,
	}
}

// Module implements the replay plugin.
type Module struct {
	logger *zap.Logger
	cfg    ReplayConfig
	bus    plugin.EventBus

	published atomic.Int64
	malformed atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new replay plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "replay",
		Version:     "0.1.0",
		Description: "Replays recorded metric batches onto the event bus",
		Roles:       []string{roles.RoleIngest},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal replay config: %w", err)
		}
	}
	if m.cfg.Rate <= 0 {
		m.cfg.Rate = DefaultConfig().Rate
	}
	if m.cfg.Burst < 1 {
		m.cfg.Burst = 1
	}
	if m.cfg.Enabled && m.cfg.Path == "" {
		return fmt.Errorf("replay enabled without a source path")
	}

	m.bus = deps.Bus
	m.logger.Info("replay module initialized",
		zap.Bool("enabled", m.cfg.Enabled),
		zap.String("path", m.cfg.Path),
		zap.Float64("rate", m.cfg.Rate),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	if !m.cfg.Enabled {
		m.logger.Info("replay disabled, not starting")
		return nil
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.replayFile(m.ctx); err != nil && m.ctx.Err() == nil {
			m.logger.Error("replay failed", zap.Error(err))
		}
	}()
	m.logger.Info("replay module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("replay module stopped",
		zap.Int64("batches_published", m.published.Load()))
	return nil
}

// replayFile streams the JSONL file onto the bus, one batch per line,
// paced by the rate limiter. Malformed lines are counted and skipped.
func (m *Module) replayFile(ctx context.Context) error {
	f, err := os.Open(m.cfg.Path)
	if err != nil {
		return fmt.Errorf("open replay source: %w", err)
	}
	defer f.Close()

	limiter := rate.NewLimiter(rate.Limit(m.cfg.Rate), m.cfg.Burst)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var batch telemetry.MetricBatch
		if err := json.Unmarshal(raw, &batch); err != nil {
			m.malformed.Add(1)
			m.logger.Warn("skipping malformed replay record",
				zap.Int("line", line), zap.Error(err))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := m.publish(ctx, &batch); err != nil {
			m.logger.Warn("failed to publish replay batch",
				zap.Int("line", line), zap.Error(err))
			continue
		}
		m.published.Add(1)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read replay source: %w", err)
	}

	m.logger.Info("replay source exhausted",
		zap.Int64("batches_published", m.published.Load()),
		zap.Int64("malformed", m.malformed.Load()))
	return nil
}

func (m *Module) publish(ctx context.Context, batch *telemetry.MetricBatch) error {
	if m.bus == nil {
		return nil
	}
	return m.bus.Publish(ctx, plugin.Event{
		Topic:   TopicSamplesCollected,
		Source:  "replay",
		Payload: batch,
	})
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"enabled":           strconv.FormatBool(m.cfg.Enabled),
			"batches_published": strconv.FormatInt(m.published.Load(), 10),
			"malformed_records": strconv.FormatInt(m.malformed.Load(), 10),
		},
	}
}

// -- roles.IngestProvider --

// Ingested implements roles.IngestProvider.
func (m *Module) Ingested() int64 {
	return m.published.Load()
}
