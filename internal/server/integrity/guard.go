// Package integrity enforces the ownership chain User -> Claim -> Image.
//
// Owner references are checked before any write, nested images are
// cascaded on claim insert and update, and deleting an owner applies the
// configured delete policy to its children. A Guard is bound to one DBTX so
// its checks and writes share the caller's transaction.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/claims"
	"github.com/kinganjia/backend/internal/server/repositories/images"
	"github.com/kinganjia/backend/internal/server/repositories/repomanager"
	"github.com/kinganjia/backend/internal/server/repositories/users"
)

// Policy decides what happens to children when their owner is deleted.
type Policy string

const (
	Reject  Policy = "reject"
	Cascade Policy = "cascade"
	Orphan  Policy = "orphan"
)

func (p Policy) Valid() bool {
	switch p {
	case Reject, Cascade, Orphan:
		return true
	}
	return false
}

type Guard struct {
	users  users.Repository
	claims claims.Repository
	images images.Repository
	policy Policy
	log    logging.Logger
}

func New(repos repomanager.RepositoryManager, db dbx.DBTX, policy Policy, log logging.Logger) *Guard {
	if !policy.Valid() {
		policy = Reject
	}
	return &Guard{
		users:  repos.Users(db),
		claims: repos.Claims(db),
		images: repos.Images(db),
		policy: policy,
		log:    log.With("module", "integrity"),
	}
}

func (g *Guard) Policy() Policy { return g.policy }

// RequireUser loads the user a claim is about to reference.
func (g *Guard) RequireUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := g.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("integrity.RequireUser", "User", id)
		}
		return nil, err
	}
	return u, nil
}

// RequireClaim loads the claim an image is about to reference.
func (g *Guard) RequireClaim(ctx context.Context, id int64) (*models.Claim, error) {
	c, err := g.claims.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("integrity.RequireClaim", "Claim", id)
		}
		return nil, err
	}
	return c, nil
}

// CascadeImages persists the images nested in a claim representation. An
// entry without id is inserted; an entry with id must already belong to
// claim and is merged with strategy s. Images of the claim not listed are
// left untouched.
func (g *Guard) CascadeImages(ctx context.Context, s merge.Strategy, claim *models.Claim, in []models.ImageInput, now time.Time) ([]models.Image, error) {
	const op = "integrity.CascadeImages"

	out := make([]models.Image, 0, len(in))
	for idx, item := range in {
		var img models.Image

		if item.ID == nil {
			merge.ApplyImage(merge.FullReplace, &img, item)
			img.ClaimID = claim.ID
			merge.Stamp(now, &img.CreatedAt, &img.UpdatedAt)
			if errs := img.Validate(); len(errs) > 0 {
				return nil, common.Validation(op, "", prefixed(idx, errs))
			}
			if _, err := g.images.Create(ctx, &img); err != nil {
				return nil, err
			}
			out = append(out, img)
			continue
		}

		cur, err := g.images.FindByID(ctx, *item.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NotFound(op, "Image", *item.ID)
			}
			return nil, err
		}
		if cur.ClaimID != claim.ID {
			return nil, common.Validation(op, "", map[string]string{
				fmt.Sprintf("images[%d].id", idx): fmt.Sprintf("Image %d belongs to claim %d", cur.ID, cur.ClaimID),
			})
		}
		img = *cur
		merge.ApplyImage(s, &img, item)
		merge.Touch(now, &img.UpdatedAt)
		if errs := img.Validate(); len(errs) > 0 {
			return nil, common.Validation(op, "", prefixed(idx, errs))
		}
		if err := g.images.Update(ctx, &img, 0); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func prefixed(idx int, errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[fmt.Sprintf("images[%d].%s", idx, k)] = v
	}
	return out
}

// BeforeDeleteUser applies the delete policy to the claims (and their
// images) of user id.
func (g *Guard) BeforeDeleteUser(ctx context.Context, id int64) error {
	const op = "integrity.BeforeDeleteUser"

	n, err := g.claims.CountByUserID(ctx, id)
	if err != nil || n == 0 {
		return err
	}

	switch g.policy {
	case Cascade:
		if _, err := g.images.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		removed, err := g.claims.DeleteByUserID(ctx, id)
		if err != nil {
			return err
		}
		g.log.Info(ctx, "cascaded user delete", "user_id", id, "claims", removed)
		return nil
	case Orphan:
		g.log.Warn(ctx, "deleting user leaves orphaned claims", "user_id", id, "claims", n)
		return nil
	default:
		return common.Validation(op, fmt.Sprintf("User %d still owns %d claims", id, n),
			map[string]string{"claims": "Delete the user's claims first"})
	}
}

// BeforeDeleteClaim applies the delete policy to the images of claim id.
func (g *Guard) BeforeDeleteClaim(ctx context.Context, id int64) error {
	const op = "integrity.BeforeDeleteClaim"

	n, err := g.images.CountByClaimID(ctx, id)
	if err != nil || n == 0 {
		return err
	}

	switch g.policy {
	case Cascade:
		removed, err := g.images.DeleteByClaimID(ctx, id)
		if err != nil {
			return err
		}
		g.log.Info(ctx, "cascaded claim delete", "claim_id", id, "images", removed)
		return nil
	case Orphan:
		g.log.Warn(ctx, "deleting claim leaves orphaned images", "claim_id", id, "images", n)
		return nil
	default:
		return common.Validation(op, fmt.Sprintf("Claim %d still has %d images", id, n),
			map[string]string{"images": "Delete the claim's images first"})
	}
}

func (g *Guard) BeforeDeleteAllUsers(ctx context.Context) error {
	const op = "integrity.BeforeDeleteAllUsers"

	n, err := g.claims.CountAll(ctx)
	if err != nil || n == 0 {
		return err
	}

	switch g.policy {
	case Cascade:
		if _, err := g.images.DeleteAll(ctx); err != nil {
			return err
		}
		removed, err := g.claims.DeleteAll(ctx)
		if err != nil {
			return err
		}
		g.log.Info(ctx, "cascaded delete of all users", "claims", removed)
		return nil
	case Orphan:
		g.log.Warn(ctx, "deleting all users leaves orphaned claims", "claims", n)
		return nil
	default:
		return common.Validation(op, fmt.Sprintf("%d claims still reference users", n),
			map[string]string{"claims": "Delete all claims first"})
	}
}

func (g *Guard) BeforeDeleteAllClaims(ctx context.Context) error {
	const op = "integrity.BeforeDeleteAllClaims"

	n, err := g.images.CountAll(ctx)
	if err != nil || n == 0 {
		return err
	}

	switch g.policy {
	case Cascade:
		removed, err := g.images.DeleteAll(ctx)
		if err != nil {
			return err
		}
		g.log.Info(ctx, "cascaded delete of all claims", "images", removed)
		return nil
	case Orphan:
		g.log.Warn(ctx, "deleting all claims leaves orphaned images", "images", n)
		return nil
	default:
		return common.Validation(op, fmt.Sprintf("%d images still reference claims", n),
			map[string]string{"images": "Delete all images first"})
	}
}
