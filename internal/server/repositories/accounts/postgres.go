// Package accounts provides a PostgreSQL-backed repository for tenant
// account rows.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository implements account storage over a dbx.Querier
// (satisfied by a scope or a transaction).
type PostgresRepository struct {
	db dbx.Querier
}

// NewPostgresRepository constructs a repository bound to the given Querier.
func NewPostgresRepository(db dbx.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account and fills in the generated fields. A unique
// constraint violation is reported as common.ErrorDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, email, password_hash, full_name, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, public_id, is_active, created_at
		 `

	err := r.db.QueryRow(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.FullName, account.IsAdmin).
		Scan(&account.ID, &account.PublicID, &account.IsActive, &account.CreatedAt)

	if err != nil {
		if common.IsUniqueViolation(err) {
			return nil, common.ErrorDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// GetByLogin returns the active account whose username or email matches login.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	query :=
		`SELECT id, public_id, username, email, password_hash, full_name, is_admin, is_active, created_at, last_login
		 FROM accounts
		 WHERE (username = $1 OR email = $1) AND is_active
		 `

	account := &models.Account{}
	err := r.db.QueryRow(ctx, query, login).Scan(
		&account.ID, &account.PublicID, &account.Username, &account.Email, &account.PasswordHash,
		&account.FullName, &account.IsAdmin, &account.IsActive, &account.CreatedAt, &account.LastLogin)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// CountByLogin reports how many accounts already use the username or email.
func (r *PostgresRepository) CountByLogin(ctx context.Context, username string, email string) (int64, error) {
	query :=
		`SELECT count(*) FROM accounts
		 WHERE username = $1 OR email = $2
		 `

	var n int64
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

// UpdateLastLogin stamps the account's last successful authentication.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	query :=
		`UPDATE accounts SET last_login = now()
		 WHERE id = $1
		 `

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
