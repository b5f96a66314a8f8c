package services

import (
	"context"
	"errors"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/events"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/timex"
)

// ErrStorageDisabled is returned by PresignUpload when no object store is
// configured.
var ErrStorageDisabled = errors.New("evidence storage is not configured")

// Upload is a presigned PUT target for an image blob.
type Upload struct {
	Key       string          `json:"key"`
	URL       string          `json:"url"`
	ExpiresAt timex.Timestamp `json:"expiresAt"`
}

type ImageService struct {
	b       *Backend
	storage Presigner
}

// NewImageService builds the service; storage may be nil.
func NewImageService(b *Backend, storage Presigner) *ImageService {
	b.defaults()
	return &ImageService{b: b, storage: storage}
}

func (s *ImageService) List(ctx context.Context) ([]models.ImageView, error) {
	images, err := s.b.Repos.Images(s.b.TX.Conn()).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ImageView, 0, len(images))
	for i := range images {
		out = append(out, models.NewImageView(&images[i], nil, nil))
	}
	return out, nil
}

func (s *ImageService) view(ctx context.Context, db dbx.DBTX, img *models.Image) (*models.ImageView, error) {
	claim, err := lookupClaim(ctx, s.b, db, img.ClaimID)
	if err != nil {
		return nil, err
	}
	var owner *models.User
	if claim != nil {
		if owner, err = lookupUser(ctx, s.b, db, claim.UserID); err != nil {
			return nil, err
		}
	}
	v := models.NewImageView(img, claim, owner)
	return &v, nil
}

// Get returns the image with its claim and the claim's owner.
func (s *ImageService) Get(ctx context.Context, id int64) (*models.ImageView, error) {
	db := s.b.TX.Conn()
	img, err := s.b.Repos.Images(db).FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "images.Get", "Image", id)
	}
	return s.view(ctx, db, img)
}

func (s *ImageService) ListByClaim(ctx context.Context, claimID int64) ([]models.ImageView, error) {
	db := s.b.TX.Conn()
	claim, err := s.b.Repos.Claims(db).FindByID(ctx, claimID)
	if err != nil {
		return nil, notFound(err, "images.ListByClaim", "Claim", claimID)
	}
	owner, err := lookupUser(ctx, s.b, db, claim.UserID)
	if err != nil {
		return nil, err
	}
	images, err := s.b.Repos.Images(db).FindByClaimID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ImageView, 0, len(images))
	for i := range images {
		out = append(out, models.NewImageView(&images[i], claim, owner))
	}
	return out, nil
}

// Create attaches a new image to an existing claim.
func (s *ImageService) Create(ctx context.Context, in models.ImageInput) (*models.ImageView, error) {
	const op = "images.Create"

	claimID := in.OwnerID()
	if claimID == nil {
		return nil, common.Validation(op, "", map[string]string{"claimId": "Claim is required"})
	}

	var view *models.ImageView
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		claim, err := s.b.guard(tx).RequireClaim(ctx, *claimID)
		if err != nil {
			return err
		}

		img := &models.Image{ClaimID: claim.ID}
		merge.ApplyImage(merge.FullReplace, img, in)
		merge.Stamp(s.b.Now(), &img.CreatedAt, &img.UpdatedAt)
		if err := validate(op, img.Validate()); err != nil {
			return err
		}
		if _, err := s.b.Repos.Images(tx).Create(ctx, img); err != nil {
			return err
		}
		view, err = s.view(ctx, tx, img)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "image created", "image_id", view.ID, "claim_id", *claimID)
	s.b.Events.Publish(events.NewEvent(events.ClaimUpdated, *claimID, userOf(view), s.b.Now()))
	return view, nil
}

func userOf(v *models.ImageView) int64 {
	if v.User == nil {
		return 0
	}
	return v.User.ID
}

// ownerOfClaim returns the user owning claimID, or 0 for an orphan.
func (s *ImageService) ownerOfClaim(ctx context.Context, db dbx.DBTX, claimID int64) (int64, error) {
	c, err := lookupClaim(ctx, s.b, db, claimID)
	if err != nil || c == nil {
		return 0, err
	}
	return c.UserID, nil
}

// Update merges in onto image id. Moving the image to another claim
// requires that claim to exist.
func (s *ImageService) Update(ctx context.Context, actor *models.User, id int64, in models.ImageInput, st merge.Strategy, expectedVersion int64) (*models.ImageView, error) {
	const op = "images.Update"

	var view *models.ImageView
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Images(tx)

		img, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err, op, "Image", id)
		}
		owner, err := s.ownerOfClaim(ctx, tx, img.ClaimID)
		if err != nil {
			return err
		}
		if err := s.b.authorize(op, actor, owner, "Image", id); err != nil {
			return err
		}
		if expectedVersion != 0 && img.Version != expectedVersion {
			return common.Conflict(op, "Image", id)
		}

		if ref := in.OwnerID(); ref != nil && *ref != img.ClaimID {
			if _, err := s.b.guard(tx).RequireClaim(ctx, *ref); err != nil {
				return err
			}
			img.ClaimID = *ref
		}

		merge.ApplyImage(st, img, in)
		merge.Touch(s.b.Now(), &img.UpdatedAt)
		if err := validate(op, img.Validate()); err != nil {
			return err
		}
		if err := repo.Update(ctx, img, expectedVersion); err != nil {
			return notFound(err, op, "Image", id)
		}
		view, err = s.view(ctx, tx, img)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "image updated", "image_id", id, "strategy", st.String(), "version", view.Version)
	if view.Claim != nil {
		s.b.Events.Publish(events.NewEvent(events.ClaimUpdated, view.Claim.ID, userOf(view), s.b.Now()))
	}
	return view, nil
}

func (s *ImageService) Delete(ctx context.Context, actor *models.User, id int64) error {
	const op = "images.Delete"

	return s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		img, err := s.b.Repos.Images(tx).FindByID(ctx, id)
		if err != nil {
			return notFound(err, op, "Image", id)
		}
		owner, err := s.ownerOfClaim(ctx, tx, img.ClaimID)
		if err != nil {
			return err
		}
		if err := s.b.authorize(op, actor, owner, "Image", id); err != nil {
			return err
		}
		return notFound(s.b.Repos.Images(tx).Delete(ctx, id), op, "Image", id)
	})
}

func (s *ImageService) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = s.b.Repos.Images(tx).DeleteAll(ctx)
		return err
	})
	return n, err
}

// PresignUpload returns a PUT URL for a new evidence blob under claimID.
// The caller creates the Image record once the upload has finished.
func (s *ImageService) PresignUpload(ctx context.Context, claimID int64) (*Upload, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.b.guard(s.b.TX.Conn()).RequireClaim(ctx, claimID); err != nil {
		return nil, err
	}
	key, url, err := s.storage.PresignPut(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return &Upload{Key: key, URL: url, ExpiresAt: timex.NewTimestamp(s.b.Now().Add(s.storage.TTL()))}, nil
}
