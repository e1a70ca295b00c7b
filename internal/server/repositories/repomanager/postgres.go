// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/migrations"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/entries"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/sessions"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Accounts returns an accounts.Repository bound to the provided Querier.
func (m *PostgresRepositoryManager) Accounts(db dbx.Querier) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided Querier.
func (m *PostgresRepositoryManager) Sessions(db dbx.Querier) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// Entries returns an entries.Repository bound to the provided Querier.
func (m *PostgresRepositoryManager) Entries(db dbx.Querier) entries.Repository {
	return entries.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
