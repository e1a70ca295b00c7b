package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connection-local settings applied on scope open and close. The row-level
// security policies read both: tenant scopes bind app.current_tenant, admin
// scopes switch on app.admin, which the policies accept as full access.
// Both settings must be cleared before a connection returns to the pool.
const (
	setTenantStmt   = `SELECT set_config('app.current_tenant', $1, false)`
	resetTenantStmt = `SELECT set_config('app.current_tenant', '', false)`
	setAdminStmt    = `SELECT set_config('app.admin', 'on', false)`
	resetAdminStmt  = `SELECT set_config('app.admin', '', false)`
)

// resetTimeout bounds the cleanup statements run during Close, which must
// finish even when the caller's context is already canceled.
const resetTimeout = 5 * time.Second

type scopeKind int

const (
	tenantScope scopeKind = iota
	adminScope
)

// leasedConn is the slice of *pgxpool.Conn a scope needs. Narrowed to an
// interface so tests can stand in for the pool.
type leasedConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
	Hijack() *pgx.Conn
}

// Scope is a unit of work pinned to one pooled connection. A tenant scope
// carries the tenant binding; an admin scope carries the admin setting that
// lets it cross tenants for maintenance. Queries issued through a tenant
// scope need no tenant filters.
//
// A Scope is not safe for concurrent use and must be closed exactly once.
// Exec, Query, and QueryRow route through the open transaction when one was
// started with Begin.
type Scope struct {
	kind     scopeKind
	tenantID int64
	conn     leasedConn
	tx       pgx.Tx
	mgr      *Manager
	logger   logging.Logger
	closed   bool
}

var _ dbx.Session = (*Scope)(nil)

func (m *Manager) acquireConn(ctx context.Context) (*pgxpool.Conn, error) {
	if m.closed.Load() {
		return nil, common.ErrorPoolClosed
	}

	acquireCtx, cancel := context.WithTimeout(ctx, m.cfg.AcquireTimeout)
	defer cancel()

	conn, err := m.pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: no connection available within %s", common.ErrorPoolExhausted, m.cfg.AcquireTimeout)
		}
		return nil, fmt.Errorf("acquire error: %w", err)
	}
	return conn, nil
}

// TenantScope leases a connection and binds tenantID as the connection-local
// tenant setting. Until the scope is closed, every statement on it is
// confined to that tenant's rows by the row-level security policies.
func (m *Manager) TenantScope(ctx context.Context, tenantID int64) (*Scope, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", common.ErrorValidation)
	}

	conn, err := m.acquireConn(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, setTenantStmt, strconv.FormatInt(tenantID, 10)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("tenant binding error: %w", err)
	}

	m.counters.sessionOpened.Add(1)
	return &Scope{
		kind:     tenantScope,
		tenantID: tenantID,
		conn:     conn,
		mgr:      m,
		logger:   m.logger.With("tenant_id", tenantID),
	}, nil
}

// AdminScope leases a connection with the tenant row filter bypassed, for
// maintenance work that legitimately crosses tenants. The setting is cleared
// on close.
func (m *Manager) AdminScope(ctx context.Context) (*Scope, error) {
	conn, err := m.acquireConn(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, setAdminStmt); err != nil {
		conn.Release()
		return nil, fmt.Errorf("admin binding error: %w", err)
	}

	m.counters.sessionOpened.Add(1)
	return &Scope{
		kind:   adminScope,
		conn:   conn,
		mgr:    m,
		logger: m.logger.With("scope", "admin"),
	}, nil
}

// WithTenantScope opens a tenant scope, runs fn, and guarantees the scope is
// closed afterwards. An open transaction left behind by a failing fn is
// rolled back before the connection returns to the pool; committing is fn's
// job.
func (m *Manager) WithTenantScope(ctx context.Context, tenantID int64, fn func(ctx context.Context, db dbx.Session) error) error {
	s, err := m.TenantScope(ctx, tenantID)
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(ctx, s)
}

// WithAdminScope opens an admin scope, runs fn, and guarantees the scope is
// closed afterwards.
func (m *Manager) WithAdminScope(ctx context.Context, fn func(ctx context.Context, db dbx.Session) error) error {
	s, err := m.AdminScope(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(ctx, s)
}

// TenantID returns the bound tenant, or 0 for an admin scope.
func (s *Scope) TenantID() int64 {
	return s.tenantID
}

func (s *Scope) target() dbx.Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// Exec runs a statement on the scope's connection, inside the open
// transaction if one was started. The duration feeds the pool's query
// counters.
func (s *Scope) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.closed {
		return pgconn.CommandTag{}, common.ErrorScopeClosed
	}
	start := time.Now()
	tag, err := s.target().Exec(ctx, sql, args...)
	s.mgr.counters.recordQuery(time.Since(start))
	return tag, err
}

// Query runs a query on the scope's connection, inside the open transaction
// if one was started.
func (s *Scope) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.closed {
		return nil, common.ErrorScopeClosed
	}
	start := time.Now()
	rows, err := s.target().Query(ctx, sql, args...)
	s.mgr.counters.recordQuery(time.Since(start))
	return rows, err
}

// QueryRow runs a single-row query on the scope's connection, inside the
// open transaction if one was started.
func (s *Scope) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.closed {
		return errRow{err: common.ErrorScopeClosed}
	}
	start := time.Now()
	row := s.target().QueryRow(ctx, sql, args...)
	s.mgr.counters.recordQuery(time.Since(start))
	return row
}

// Begin opens a transaction on the pinned connection. Nested transactions
// are not supported.
func (s *Scope) Begin(ctx context.Context) error {
	if s.closed {
		return common.ErrorScopeClosed
	}
	if s.tx != nil {
		return common.ErrorTxInProgress
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin error: %w", err)
	}
	s.tx = tx
	return nil
}

// Commit commits the transaction opened with Begin.
func (s *Scope) Commit(ctx context.Context) error {
	if s.tx == nil {
		return common.ErrorNoTx
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit error: %w", err)
	}
	return nil
}

// Rollback aborts the transaction opened with Begin.
func (s *Scope) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return common.ErrorNoTx
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback error: %w", err)
	}
	return nil
}

// Close rolls back any open transaction, clears the connection-local
// settings, and returns the connection to the pool. The first call wins;
// later calls are no-ops. A connection whose settings cannot be cleared is
// destroyed instead of going back to the pool, so no later scope can inherit
// a stale tenant binding or the admin setting.
func (s *Scope) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Cleanup must run even when the caller's ctx is already canceled.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
	defer cancel()

	if s.tx != nil {
		if err := s.tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Warn(cleanupCtx, "rollback on scope close failed", "error", err)
		}
		s.tx = nil
	}

	reset := resetTenantStmt
	if s.kind == adminScope {
		reset = resetAdminStmt
	}

	_, err := s.conn.Exec(cleanupCtx, reset)
	if err != nil {
		s.logger.Error(cleanupCtx, "scope reset failed, destroying connection", "error", err)
		if raw := s.conn.Hijack(); raw != nil {
			_ = raw.Close(cleanupCtx)
		}
	} else {
		s.conn.Release()
	}

	s.mgr.counters.sessionClosed.Add(1)

	if err != nil {
		return fmt.Errorf("scope reset error: %w", err)
	}
	return nil
}

// errRow satisfies pgx.Row for queries rejected before reaching the wire.
type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }
