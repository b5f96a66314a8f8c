// Package services orchestrates the resource operations: it runs each write
// unit in a transaction, consults the integrity guard before touching owned
// records, applies the merge strategies and publishes claim events once a
// unit has committed.
package services

import (
	"context"
	"errors"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/events"
	"github.com/kinganjia/backend/internal/server/integrity"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/repomanager"
	"github.com/kinganjia/backend/internal/timex"
)

// Backend is the storage side shared by every resource service.
type Backend struct {
	TX    dbx.TxRunner
	Repos repomanager.RepositoryManager

	// DeletePolicy applies when an owner with children is deleted.
	DeletePolicy integrity.Policy
	// EnforceOwnership makes claim and image update/delete owner-only.
	EnforceOwnership bool

	Events events.Publisher
	Now    timex.Clock
	Log    logging.Logger
}

func (b *Backend) defaults() {
	if b.Events == nil {
		b.Events = events.Discard{}
	}
	if b.Now == nil {
		b.Now = timex.UTCNow
	}
	if b.Log == nil {
		b.Log = logging.Nop{}
	}
	if !b.DeletePolicy.Valid() {
		b.DeletePolicy = integrity.Reject
	}
}

func (b *Backend) guard(db dbx.DBTX) *integrity.Guard {
	return integrity.New(b.Repos, db, b.DeletePolicy, b.Log)
}

// authorize fails with Forbidden when ownership is enforced and actor does
// not own the record. An unknown owner (orphaned record) is not checked.
func (b *Backend) authorize(op string, actor *models.User, ownerID int64, resource string, id int64) error {
	if !b.EnforceOwnership || actor == nil || ownerID == 0 {
		return nil
	}
	if actor.ID != ownerID {
		return common.Forbidden(op, resource, id)
	}
	return nil
}

// notFound turns a bare repository ErrorNotFound into a tagged error naming
// the resource.
func notFound(err error, op, resource string, id int64) error {
	if errors.Is(err, common.ErrorNotFound) {
		if _, tagged := common.AsError(err); !tagged {
			return common.NotFound(op, resource, id)
		}
	}
	return err
}

func validate(op string, errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return common.Validation(op, "", errs)
}

// lookupUser returns nil when the user no longer exists.
func lookupUser(ctx context.Context, b *Backend, db dbx.DBTX, id int64) (*models.User, error) {
	u, err := b.Repos.Users(db).FindByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return u, err
}

func lookupClaim(ctx context.Context, b *Backend, db dbx.DBTX, id int64) (*models.Claim, error) {
	c, err := b.Repos.Claims(db).FindByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return c, err
}
