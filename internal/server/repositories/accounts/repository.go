package accounts

import (
	"context"

	"github.com/dmitrijs2005/tenantdb/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	CountByLogin(ctx context.Context, username string, email string) (int64, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}
