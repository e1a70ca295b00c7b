// Package sessions provides a PostgreSQL-backed repository for issued
// session tokens.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository implements session storage over a dbx.Querier
// (satisfied by a scope or a transaction).
type PostgresRepository struct {
	db dbx.Querier
}

// NewPostgresRepository constructs a repository bound to the given Querier.
func NewPostgresRepository(db dbx.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new session for accountID with an expiry of now+validity.
func (r *PostgresRepository) Create(ctx context.Context, accountID int64, token string, ip string, userAgent string, validity time.Duration) (*models.Session, error) {
	query := `
		INSERT INTO sessions (account_id, token, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, last_accessed, is_active
	`

	session := &models.Session{AccountID: accountID, Token: token, IPAddress: ip, UserAgent: userAgent}
	session.ExpiresAt = time.Now().Add(validity)

	err := r.db.QueryRow(ctx, query,
		accountID, token, session.ExpiresAt, ip, userAgent).
		Scan(&session.ID, &session.CreatedAt, &session.LastAccessed, &session.IsActive)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

// AccountByToken resolves a live session token to its session row and the
// owning active account. Expired, revoked, or unknown tokens all come back
// as common.ErrorNotFound.
func (r *PostgresRepository) AccountByToken(ctx context.Context, token string) (*models.Account, *models.Session, error) {
	query := `
		SELECT a.id, a.public_id, a.username, a.email, a.full_name, a.is_admin, a.is_active, a.created_at, a.last_login,
		       s.id, s.expires_at, s.created_at, s.last_accessed
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.token = $1 AND s.is_active AND s.expires_at > now() AND a.is_active
	`

	account := &models.Account{}
	session := &models.Session{Token: token, IsActive: true}
	err := r.db.QueryRow(ctx, query, token).Scan(
		&account.ID, &account.PublicID, &account.Username, &account.Email, &account.FullName,
		&account.IsAdmin, &account.IsActive, &account.CreatedAt, &account.LastLogin,
		&session.ID, &session.ExpiresAt, &session.CreatedAt, &session.LastAccessed)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	session.AccountID = account.ID

	return account, session, nil
}

// Touch stamps the session's last access time.
func (r *PostgresRepository) Touch(ctx context.Context, id int64) error {
	query := `
		UPDATE sessions SET last_accessed = now()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// DeleteExpired removes sessions whose expiry has passed and returns how
// many rows went away.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < now()
	`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

// CountLive counts the unexpired active sessions visible to the current
// scope. No tenant filter here: row-level security narrows the rows.
func (r *PostgresRepository) CountLive(ctx context.Context) (int64, error) {
	query := `
		SELECT count(*) FROM sessions
		WHERE is_active AND expires_at > now()
	`

	var n int64
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
