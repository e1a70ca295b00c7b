// Package entries provides a PostgreSQL-backed repository for tenant-owned
// entry rows. Queries here carry no tenant filters: the repository is meant
// to run inside a tenant scope, where row-level security narrows every
// statement to the bound tenant.
package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.Querier.
type PostgresRepository struct {
	db dbx.Querier
}

// NewPostgresRepository constructs a repository bound to the given Querier.
func NewPostgresRepository(db dbx.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry for the entry's account and fills in the
// generated fields.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (account_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, entry.AccountID, entry.Title, entry.Body).
		Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

// List returns every entry visible to the current scope, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Entry, error) {
	query := `
		SELECT id, account_id, title, body, created_at FROM entries
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.AccountID, &item.Title, &item.Body, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Usage aggregates how many entries the current scope can see and how many
// bytes of text they hold.
func (r *PostgresRepository) Usage(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT count(*), COALESCE(SUM(octet_length(title) + octet_length(body)), 0)
		FROM entries
	`

	var count, bytes int64
	if err := r.db.QueryRow(ctx, query).Scan(&count, &bytes); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}

	return count, bytes, nil
}
