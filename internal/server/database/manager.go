// Package database manages the shared PostgreSQL connection pool and the
// tenant/admin scopes that lease connections from it. Tenant isolation is
// enforced server-side: every tenant scope installs a connection-local
// setting that the schema's row-level security policies match against.
package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/dmitrijs2005/tenantdb/internal/server/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Health status values reported in stats and mirrored to the ops endpoint.
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// probeTimeout bounds the startup probe and every monitor iteration.
const probeTimeout = 5 * time.Second

// Manager owns the shared pgx pool, its activity counters, and the
// background health monitor. All scopes are opened through it.
type Manager struct {
	pool     *pgxpool.Pool
	cfg      *config.Config
	logger   logging.Logger
	counters Counters
	status   atomic.Value // one of the Status* strings
	closed   atomic.Bool

	closeOnce   sync.Once
	stopMonitor context.CancelFunc
	monitorDone chan struct{}

	// probe is a seam for tests; defaults to pinging the pool.
	probe func(ctx context.Context) error
}

// NewManager connects to the database and returns a ready Manager. The pool
// is sized to cfg.PoolSize base connections plus cfg.MaxOverflow burst
// connections, recycled after cfg.ConnMaxLifetime. A synchronous probe runs
// first: an unreachable database is fatal here, unlike later probe failures
// which are only counted. The schema marker check and the health monitor
// start before the function returns.
func NewManager(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Manager, error) {

	pc, err := pgxpool.ParseConfig(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("dsn parse error: %w", err)
	}

	m := &Manager{cfg: cfg, logger: logger.With("module", "database")}
	m.status.Store(StatusUnknown)

	pc.MinConns = cfg.PoolSize
	pc.MaxConns = cfg.PoolSize + cfg.MaxOverflow
	pc.MaxConnLifetime = cfg.ConnMaxLifetime

	// Hooks only touch counters and logs; pool behavior stays pgx's.
	pc.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		m.counters.connAttempts.Add(1)
		return nil
	}
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		m.counters.connSuccesses.Add(1)
		m.logger.Debug(ctx, "connection established")
		return nil
	}
	pc.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if !cfg.PreValidate {
			return true
		}
		if err := conn.Ping(ctx); err != nil {
			m.logger.Warn(ctx, "discarding dead connection on acquire", "error", err)
			return false
		}
		return true
	}
	pc.AfterRelease = func(conn *pgx.Conn) bool {
		m.logger.Debug(context.Background(), "connection returned to pool")
		return true
	}
	pc.BeforeClose = func(conn *pgx.Conn) {
		m.logger.Debug(context.Background(), "pooled connection closed")
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pool init error: %w", err)
	}
	m.pool = pool
	m.probe = m.pingPool

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := m.probe(probeCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrorConnectivity, err)
	}
	m.status.Store(StatusHealthy)
	m.counters.lastProbe.Store(time.Now().UnixNano())

	m.checkSchemaMarker(ctx)

	monitorCtx, stop := context.WithCancel(context.Background())
	m.stopMonitor = stop
	m.monitorDone = make(chan struct{})
	go m.runHealthMonitor(monitorCtx)

	m.logger.Info(ctx, "database pool ready",
		"pool_size", cfg.PoolSize, "max_overflow", cfg.MaxOverflow, "pre_validate", cfg.PreValidate)

	return m, nil
}

func (m *Manager) pingPool(ctx context.Context) error {
	return m.pool.Ping(ctx)
}

// checkSchemaMarker warns when the goose version table is absent, which means
// migrations never ran against this database. Not fatal: the operator may be
// about to run them.
func (m *Manager) checkSchemaMarker(ctx context.Context) {
	var n int64
	if err := m.pool.QueryRow(ctx, `SELECT count(*) FROM goose_db_version`).Scan(&n); err != nil {
		m.logger.Warn(ctx, "schema version marker missing, run migrations", "error", err)
		return
	}
	m.logger.Info(ctx, "schema version marker found", "applied", n)
}

// Pool exposes the raw pool for infrastructure tasks (migrations, ops
// tooling). Business code goes through scopes instead.
func (m *Manager) Pool() *pgxpool.Pool {
	return m.pool
}

// Healthy reports whether the most recent connectivity probe succeeded.
func (m *Manager) Healthy() bool {
	return m.status.Load() == StatusHealthy
}

// Stats returns a point-in-time snapshot of pool state and counters.
func (m *Manager) Stats() Stats {
	st := m.pool.Stat()

	s := Stats{
		PoolSize:            m.cfg.PoolSize,
		CheckedIn:           st.IdleConns(),
		CheckedOut:          st.AcquiredConns(),
		TotalConnections:    st.TotalConns(),
		MaxOverflow:         m.cfg.MaxOverflow,
		ConnectionAttempts:  m.counters.connAttempts.Load(),
		SessionCreated:      m.counters.sessionOpened.Load(),
		SessionClosed:       m.counters.sessionClosed.Load(),
		AvgQueryTimeSec:     m.counters.avgQueryTime(),
		TotalQueries:        m.counters.queryCount.Load(),
		HealthCheckFailures: m.counters.probeFailures.Load(),
		Status:              m.status.Load().(string),
	}

	if failures := s.ConnectionAttempts - m.counters.connSuccesses.Load(); failures > 0 {
		s.ConnectionFailures = failures
	}
	if s.TotalConnections > s.PoolSize {
		s.Overflow = s.TotalConnections - s.PoolSize
	}
	if s.PoolSize > 0 {
		s.UtilizationPct = float64(s.CheckedOut) / float64(s.PoolSize) * 100
	}
	if s.MaxOverflow > 0 {
		s.OverflowPct = float64(s.Overflow) / float64(s.MaxOverflow) * 100
	}
	if v := m.counters.lastProbe.Load(); v > 0 {
		s.LastHealthCheck = time.Unix(0, v)
	}

	return s
}

// Report returns the evaluated stats report for the ops surface.
func (m *Manager) Report() Report {
	return Evaluate(m.Stats())
}

// Close stops the health monitor, waits for it, and closes the pool. Safe to
// call more than once: only the first call does the work.
func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.stopMonitor()
		<-m.monitorDone

		final := m.Stats()
		m.pool.Close()
		m.status.Store(StatusUnknown)

		m.logger.Info(ctx, "database pool closed",
			"connection_attempts", final.ConnectionAttempts,
			"session_created", final.SessionCreated,
			"session_closed", final.SessionClosed,
			"total_queries", final.TotalQueries)
	})
	return nil
}
