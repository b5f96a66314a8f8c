package memory

import (
	"context"
	"slices"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/models"
)

type ClaimRepository struct {
	s *Store
}

func (r *ClaimRepository) FindByID(_ context.Context, id int64) (*models.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.claims[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

// newestFirst matches the Postgres ordering: created_at DESC, id DESC.
func newestFirst(a, b models.Claim) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return compareID(b.ID, a.ID)
}

func (r *ClaimRepository) filter(keep func(models.Claim) bool) []models.Claim {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Claim{}
	for _, c := range r.s.claims {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, newestFirst)
	return out
}

func (r *ClaimRepository) FindAll(_ context.Context) ([]models.Claim, error) {
	return r.filter(func(models.Claim) bool { return true }), nil
}

func (r *ClaimRepository) FindByUserID(_ context.Context, userID int64) ([]models.Claim, error) {
	return r.filter(func(c models.Claim) bool { return c.UserID == userID }), nil
}

func (r *ClaimRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.claims[id]
	return ok, nil
}

func (r *ClaimRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	cs, _ := r.FindByUserID(ctx, userID)
	return int64(len(cs)), nil
}

func (r *ClaimRepository) CountAll(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.claims)), nil
}

func (r *ClaimRepository) Create(_ context.Context, claim *models.Claim) (*models.Claim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.claimSeq++
	claim.ID = r.s.claimSeq
	claim.Version = 1
	r.s.claims[claim.ID] = *claim
	return claim, nil
}

func (r *ClaimRepository) Update(_ context.Context, claim *models.Claim, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.claims[claim.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return common.Conflict("claims.Update", "Claim", claim.ID)
	}
	claim.Version = cur.Version + 1
	claim.CreatedAt = cur.CreatedAt
	r.s.claims[claim.ID] = *claim
	return nil
}

func (r *ClaimRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.claims[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.claims, id)
	return nil
}

func (r *ClaimRepository) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.claims {
		if c.UserID == userID {
			delete(r.s.claims, id)
			n++
		}
	}
	return n, nil
}

func (r *ClaimRepository) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.claims))
	clear(r.s.claims)
	return n, nil
}
