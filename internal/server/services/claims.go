package services

import (
	"context"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/events"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
)

type ClaimService struct {
	b *Backend
}

func NewClaimService(b *Backend) *ClaimService {
	b.defaults()
	return &ClaimService{b: b}
}

// List returns every claim, newest first, with owner and image summaries.
// Owners and images are read once for the whole page.
func (s *ClaimService) List(ctx context.Context) ([]models.ClaimView, error) {
	db := s.b.TX.Conn()

	claims, err := s.b.Repos.Claims(db).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.b.Repos.Users(db).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	images, err := s.b.Repos.Images(db).FindAll(ctx)
	if err != nil {
		return nil, err
	}

	owners := make(map[int64]*models.User, len(users))
	for i := range users {
		owners[users[i].ID] = &users[i]
	}
	byClaim := make(map[int64][]models.Image)
	for _, img := range images {
		byClaim[img.ClaimID] = append(byClaim[img.ClaimID], img)
	}

	out := make([]models.ClaimView, 0, len(claims))
	for i := range claims {
		c := &claims[i]
		out = append(out, models.NewClaimView(c, owners[c.UserID], byClaim[c.ID]))
	}
	return out, nil
}

func (s *ClaimService) view(ctx context.Context, db dbx.DBTX, c *models.Claim) (*models.ClaimView, error) {
	owner, err := lookupUser(ctx, s.b, db, c.UserID)
	if err != nil {
		return nil, err
	}
	images, err := s.b.Repos.Images(db).FindByClaimID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	v := models.NewClaimView(c, owner, images)
	return &v, nil
}

// Get returns the claim projection. The owner block is absent when the
// owning user has been deleted.
func (s *ClaimService) Get(ctx context.Context, id int64) (*models.ClaimView, error) {
	db := s.b.TX.Conn()
	c, err := s.b.Repos.Claims(db).FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "claims.Get", "Claim", id)
	}
	return s.view(ctx, db, c)
}

func (s *ClaimService) ListByUser(ctx context.Context, userID int64) ([]models.ClaimView, error) {
	db := s.b.TX.Conn()
	owner, err := s.b.Repos.Users(db).FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "claims.ListByUser", "User", userID)
	}
	claims, err := s.b.Repos.Claims(db).FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ClaimView, 0, len(claims))
	for i := range claims {
		images, err := s.b.Repos.Images(db).FindByClaimID(ctx, claims[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.NewClaimView(&claims[i], owner, images))
	}
	return out, nil
}

// Create checks that the referenced user exists, persists the claim and
// inserts the images nested in the request, all in one transaction.
func (s *ClaimService) Create(ctx context.Context, in models.ClaimInput) (*models.ClaimView, error) {
	const op = "claims.Create"

	ownerID := in.OwnerID()
	if ownerID == nil {
		return nil, common.Validation(op, "", map[string]string{"userId": "User is required"})
	}

	var view *models.ClaimView
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		g := s.b.guard(tx)
		owner, err := g.RequireUser(ctx, *ownerID)
		if err != nil {
			return err
		}

		now := s.b.Now()
		c := &models.Claim{UserID: owner.ID}
		merge.ApplyClaim(merge.FullReplace, c, in)
		merge.Stamp(now, &c.CreatedAt, &c.UpdatedAt)
		if err := validate(op, c.Validate()); err != nil {
			return err
		}
		if _, err := s.b.Repos.Claims(tx).Create(ctx, c); err != nil {
			return err
		}

		images, err := g.CascadeImages(ctx, merge.FullReplace, c, in.Images, now)
		if err != nil {
			return err
		}
		v := models.NewClaimView(c, owner, images)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "claim created", "claim_id", view.ID, "user_id", *ownerID, "images", view.ImageCount)
	s.b.Events.Publish(events.NewEvent(events.ClaimCreated, view.ID, *ownerID, s.b.Now()))
	return view, nil
}

// Update merges in onto claim id with strategy st and cascades nested
// images. The owner only changes when the input names a different,
// existing user.
func (s *ClaimService) Update(ctx context.Context, actor *models.User, id int64, in models.ClaimInput, st merge.Strategy, expectedVersion int64) (*models.ClaimView, error) {
	const op = "claims.Update"

	var view *models.ClaimView
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Claims(tx)
		g := s.b.guard(tx)

		c, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err, op, "Claim", id)
		}
		if err := s.b.authorize(op, actor, c.UserID, "Claim", id); err != nil {
			return err
		}
		if expectedVersion != 0 && c.Version != expectedVersion {
			return common.Conflict(op, "Claim", id)
		}

		if ref := in.OwnerID(); ref != nil && *ref != c.UserID {
			if _, err := g.RequireUser(ctx, *ref); err != nil {
				return err
			}
			c.UserID = *ref
		}

		now := s.b.Now()
		merge.ApplyClaim(st, c, in)
		merge.Touch(now, &c.UpdatedAt)
		if err := validate(op, c.Validate()); err != nil {
			return err
		}
		if err := repo.Update(ctx, c, expectedVersion); err != nil {
			return notFound(err, op, "Claim", id)
		}
		if _, err := g.CascadeImages(ctx, st, c, in.Images, now); err != nil {
			return err
		}

		view, err = s.view(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "claim updated", "claim_id", id, "strategy", st.String(), "version", view.Version)
	s.b.Events.Publish(events.NewEvent(events.ClaimUpdated, id, ownerOf(view), s.b.Now()))
	return view, nil
}

func ownerOf(v *models.ClaimView) int64 {
	if v.User == nil {
		return 0
	}
	return v.User.ID
}

func (s *ClaimService) Delete(ctx context.Context, actor *models.User, id int64) error {
	const op = "claims.Delete"

	var ownerID int64
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.b.Repos.Claims(tx).FindByID(ctx, id)
		if err != nil {
			return notFound(err, op, "Claim", id)
		}
		if err := s.b.authorize(op, actor, c.UserID, "Claim", id); err != nil {
			return err
		}
		if err := s.b.guard(tx).BeforeDeleteClaim(ctx, id); err != nil {
			return err
		}
		ownerID = c.UserID
		return notFound(s.b.Repos.Claims(tx).Delete(ctx, id), op, "Claim", id)
	})
	if err != nil {
		return err
	}

	s.b.Log.Info(ctx, "claim deleted", "claim_id", id)
	s.b.Events.Publish(events.NewEvent(events.ClaimDeleted, id, ownerID, s.b.Now()))
	return nil
}

func (s *ClaimService) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.b.guard(tx).BeforeDeleteAllClaims(ctx); err != nil {
			return err
		}
		var err error
		n, err = s.b.Repos.Claims(tx).DeleteAll(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.b.Log.Info(ctx, "all claims deleted", "count", n)
	if n > 0 {
		s.b.Events.Publish(events.NewEvent(events.ClaimDeleted, 0, 0, s.b.Now()))
	}
	return n, nil
}

// Stats aggregates every claim by status, severity, detection type and
// location. Claims without a status or severity are not counted in that
// breakdown.
func (s *ClaimService) Stats(ctx context.Context) (*models.ClaimStats, error) {
	claims, err := s.b.Repos.Claims(s.b.TX.Conn()).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewClaimStats(claims), nil
}
