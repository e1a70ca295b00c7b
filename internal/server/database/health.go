package database

import (
	"context"
	"time"
)

// runHealthMonitor probes the database on a fixed interval until ctx is
// canceled. It owns the manager's status transitions after startup.
func (m *Manager) runHealthMonitor(ctx context.Context) {
	defer close(m.monitorDone)

	ticker := time.NewTicker(m.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runProbe(ctx)
		}
	}
}

func (m *Manager) runProbe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	if err := m.probe(probeCtx); err != nil {
		m.counters.probeFailures.Add(1)
		m.status.Store(StatusUnhealthy)
		m.logger.Error(ctx, "health check failed", "error", err, "elapsed", time.Since(start))
		return
	}
	m.counters.lastProbe.Store(time.Now().UnixNano())

	if m.status.Load() != StatusHealthy {
		m.logger.Info(ctx, "database recovered")
	}
	m.status.Store(StatusHealthy)

	st := m.Stats()
	if st.UtilizationPct > highUtilizationPct {
		m.logger.Warn(ctx, "pool utilization high",
			"utilization_pct", st.UtilizationPct,
			"checked_out", st.CheckedOut,
			"overflow", st.Overflow)
	}
}
