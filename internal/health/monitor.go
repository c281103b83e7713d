// Package health runs periodic database health checks and reconnects the
// connection pool when a check fails.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCheckTimeout bounds a single health check and reconnect attempt.
const DefaultCheckTimeout = 5 * time.Second

// Checker is a connection that can verify and re-establish itself.
// *database.Handle satisfies it.
type Checker interface {
	HealthCheck(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Monitor schedules health checks for a Checker.
type Monitor struct {
	target  Checker
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	healthy atomic.Bool
}

// NewMonitor creates a Monitor. A zero timeout uses DefaultCheckTimeout.
func NewMonitor(target Checker, timeout time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	m := &Monitor{
		target: target,
		// overlapping runs are skipped
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "health_monitor"),
		timeout: timeout,
	}
	m.healthy.Store(true)
	return m
}

// Start registers the check on schedule (a cron spec such as "@every 30s")
// and starts the scheduler.
func (m *Monitor) Start(schedule string) error {
	if _, err := m.cron.AddFunc(schedule, m.run); err != nil {
		return fmt.Errorf("invalid health check schedule %q: %w", schedule, err)
	}
	m.cron.Start()
	m.logger.Info("health monitor started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("health monitor stopped")
}

// Healthy reports the outcome of the most recent check.
func (m *Monitor) Healthy() bool {
	return m.healthy.Load()
}

func (m *Monitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	_ = m.Check(ctx)
}

// Check runs one health check. When it fails the connection is re-established;
// the returned error is the reconnect failure, or nil if the pool recovered.
func (m *Monitor) Check(ctx context.Context) error {
	err := m.target.HealthCheck(ctx)
	if err == nil {
		if !m.healthy.Swap(true) {
			m.logger.Info("database connection healthy again")
		}
		return nil
	}

	m.logger.Warn("database health check failed, reconnecting", "error", err)
	if err := m.target.Reconnect(ctx); err != nil {
		m.healthy.Store(false)
		m.logger.Error("database reconnect failed", "error", err)
		return fmt.Errorf("reconnect after failed health check: %w", err)
	}
	m.healthy.Store(true)
	m.logger.Info("database reconnected")
	return nil
}
