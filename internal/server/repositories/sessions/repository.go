package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, accountID int64, token string, ip string, userAgent string, validity time.Duration) (*models.Session, error)
	AccountByToken(ctx context.Context, token string) (*models.Account, *models.Session, error)
	Touch(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountLive(ctx context.Context) (int64, error)
}
