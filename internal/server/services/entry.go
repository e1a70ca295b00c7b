package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/repomanager"
)

// EntryService stores and lists tenant-owned entries. Every operation runs
// in the owning account's tenant scope, so reads and writes are isolated by
// row-level security rather than by query filters.
type EntryService struct {
	scopes      ScopeSource
	repomanager repomanager.RepositoryManager
}

func NewEntryService(scopes ScopeSource, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{scopes: scopes, repomanager: m}
}

// Add creates an entry owned by accountID.
func (s *EntryService) Add(ctx context.Context, accountID int64, title string, body string) (*models.Entry, error) {

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	var entry *models.Entry

	err := s.scopes.WithTenantScope(ctx, accountID, func(ctx context.Context, db dbx.Session) error {
		var err error
		entry, err = s.repomanager.Entries(db).Create(ctx, &models.Entry{
			AccountID: accountID,
			Title:     title,
			Body:      body,
		})
		if err != nil {
			return fmt.Errorf("error creating entry: %v", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns the account's entries, oldest first.
func (s *EntryService) List(ctx context.Context, accountID int64) ([]*models.Entry, error) {

	var list []*models.Entry

	err := s.scopes.WithTenantScope(ctx, accountID, func(ctx context.Context, db dbx.Session) error {
		var err error
		list, err = s.repomanager.Entries(db).List(ctx)
		if err != nil {
			return fmt.Errorf("error selecting entries: %v", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return list, nil
}
