// Package users persists User accounts.
package users

import (
	"context"

	"github.com/kinganjia/backend/internal/server/models"
)

// Repository is the credential store. Lookups of a missing row return
// common.ErrorNotFound; an email collision returns common.ErrorDuplicate.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// Update writes user and bumps its version. A non-zero expectedVersion
	// must match the stored one or common.ErrVersionConflict is returned.
	Update(ctx context.Context, user *models.User, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}
