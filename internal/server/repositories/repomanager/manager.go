package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/entries"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.Querier) accounts.Repository
	Sessions(db dbx.Querier) sessions.Repository
	Entries(db dbx.Querier) entries.Repository
}
