package entries

import (
	"context"

	"github.com/dmitrijs2005/tenantdb/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	List(ctx context.Context) ([]*models.Entry, error)
	Usage(ctx context.Context) (int64, int64, error)
}
