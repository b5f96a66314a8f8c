// Package claims persists incident claims.
package claims

import (
	"context"

	"github.com/kinganjia/backend/internal/server/models"
)

// Repository stores claims. The user_id column is not a foreign key; callers
// check that the owner exists before writing.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Claim, error)
	FindAll(ctx context.Context) ([]models.Claim, error)
	FindByUserID(ctx context.Context, userID int64) ([]models.Claim, error)
	Exists(ctx context.Context, id int64) (bool, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, claim *models.Claim) (*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
