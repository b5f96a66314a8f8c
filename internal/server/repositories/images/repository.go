// Package images persists evidence images attached to claims.
package images

import (
	"context"

	"github.com/kinganjia/backend/internal/server/models"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Image, error)
	FindAll(ctx context.Context) ([]models.Image, error)
	FindByClaimID(ctx context.Context, claimID int64) ([]models.Image, error)
	CountByClaimID(ctx context.Context, claimID int64) (int64, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	Update(ctx context.Context, image *models.Image, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByClaimID(ctx context.Context, claimID int64) (int64, error)
	// DeleteByUserID removes the images of every claim owned by userID.
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
