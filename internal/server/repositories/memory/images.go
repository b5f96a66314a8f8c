package memory

import (
	"context"
	"slices"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/models"
)

type ImageRepository struct {
	s *Store
}

func (r *ImageRepository) FindByID(_ context.Context, id int64) (*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.images[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &i, nil
}

func (r *ImageRepository) filter(keep func(models.Image) bool) []models.Image {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Image{}
	for _, i := range r.s.images {
		if keep(i) {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b models.Image) int { return compareID(a.ID, b.ID) })
	return out
}

func (r *ImageRepository) FindAll(_ context.Context) ([]models.Image, error) {
	return r.filter(func(models.Image) bool { return true }), nil
}

func (r *ImageRepository) FindByClaimID(_ context.Context, claimID int64) ([]models.Image, error) {
	return r.filter(func(i models.Image) bool { return i.ClaimID == claimID }), nil
}

func (r *ImageRepository) CountByClaimID(ctx context.Context, claimID int64) (int64, error) {
	is, _ := r.FindByClaimID(ctx, claimID)
	return int64(len(is)), nil
}

// ownedBy must be called with mu held.
func (r *ImageRepository) ownedBy(i models.Image, userID int64) bool {
	c, ok := r.s.claims[i.ClaimID]
	return ok && c.UserID == userID
}

func (r *ImageRepository) CountByUserID(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, i := range r.s.images {
		if r.ownedBy(i, userID) {
			n++
		}
	}
	return n, nil
}

func (r *ImageRepository) CountAll(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.images)), nil
}

func (r *ImageRepository) Create(_ context.Context, image *models.Image) (*models.Image, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.imageSeq++
	image.ID = r.s.imageSeq
	image.Version = 1
	r.s.images[image.ID] = *image
	return image, nil
}

func (r *ImageRepository) Update(_ context.Context, image *models.Image, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.images[image.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return common.Conflict("images.Update", "Image", image.ID)
	}
	image.Version = cur.Version + 1
	image.CreatedAt = cur.CreatedAt
	r.s.images[image.ID] = *image
	return nil
}

func (r *ImageRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.images[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.images, id)
	return nil
}

func (r *ImageRepository) deleteWhere(match func(models.Image) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, i := range r.s.images {
		if match(i) {
			delete(r.s.images, id)
			n++
		}
	}
	return n
}

func (r *ImageRepository) DeleteByClaimID(_ context.Context, claimID int64) (int64, error) {
	return r.deleteWhere(func(i models.Image) bool { return i.ClaimID == claimID }), nil
}

func (r *ImageRepository) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	return r.deleteWhere(func(i models.Image) bool { return r.ownedBy(i, userID) }), nil
}

func (r *ImageRepository) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.images))
	clear(r.s.images)
	return n, nil
}
