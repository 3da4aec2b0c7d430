package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pinger is the store's liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitor pings the store on an interval and logs state transitions, so an
// outage shows up in the logs before the first failed purchase does.
type StoreMonitor struct {
	store    Pinger
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	healthy  bool
	failures int
}

func NewStoreMonitor(store Pinger, logger *slog.Logger, interval time.Duration) *StoreMonitor {
	return &StoreMonitor{
		store:    store,
		logger:   logger,
		interval: interval,
		timeout:  3 * time.Second, // 🛡️ SLA: a hung ping must not stall the loop
		healthy:  true,
	}
}

func (m *StoreMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// Healthy reports the result of the most recent ping.
func (m *StoreMonitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

func (m *StoreMonitor) check(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	err := m.store.Ping(checkCtx)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err != nil:
		m.failures++
		if m.healthy {
			m.logger.Error("Store unreachable", slog.Any("error", err))
		} else {
			m.logger.Warn("Store still unreachable", slog.Int("consecutive_failures", m.failures))
		}
		m.healthy = false
	case !m.healthy:
		m.logger.Info("Store recovered", slog.Int("failed_checks", m.failures))
		m.healthy = true
		m.failures = 0
	}
}
