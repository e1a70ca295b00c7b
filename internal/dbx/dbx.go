// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal query interface (Querier) implemented by pooled connections,
// transactions, and scopes, and a helper to run functions inside a
// transaction.
package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used by our repos. *pgxpool.Pool,
// *pgxpool.Conn, pgx.Tx, and database.Scope all satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// Session is a Querier with explicit transaction control over a single
// underlying connection. database.Scope implements it.
type Session interface {
	Querier
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// WithTx begins a transaction on s, runs fn with a transactional handle, and
// then commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, scope, func(ctx context.Context, q dbx.Querier) error {
//	    _, err := q.Exec(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, s Session, fn func(ctx context.Context, q Querier) error) (err error) {
	if err = s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = s.Rollback(ctx)
			return
		}
		err = s.Commit(ctx)
	}()

	err = fn(ctx, s)
	return err
}
