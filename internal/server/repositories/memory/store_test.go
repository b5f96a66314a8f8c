package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repomanager.RepositoryManager = (*Store)(nil)
	_ dbx.TxRunner                  = (*Store)(nil)
)

func ptr[T any](v T) *T { return &v }

func TestUsers_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Users(nil)

	u, err := repo.Create(ctx, &models.User{Email: "a@x.com", FirstName: "A", LastName: "B", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, int64(1), u.Version)

	_, err = repo.Create(ctx, &models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrorDuplicate)

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got.FirstName = "Z"
	require.NoError(t, repo.Update(ctx, got, 1))
	assert.Equal(t, int64(2), got.Version)

	stale := *got
	stale.FirstName = "Y"
	assert.ErrorIs(t, repo.Update(ctx, &stale, 1), common.ErrVersionConflict)

	// last write wins without an expected version
	require.NoError(t, repo.Update(ctx, &stale, 0))
	assert.Equal(t, int64(3), stale.Version)

	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: 99}, 0), common.ErrorNotFound)
}

func TestUsers_UpdateEmailCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users(nil)

	_, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &models.User{Email: "b@x.com"})
	require.NoError(t, err)

	b.Email = "a@x.com"
	assert.ErrorIs(t, repo.Update(ctx, b, 0), common.ErrorDuplicate)

	stored, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", stored.Email)
}

func TestClaims_OrderingAndCounts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Claims(nil)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, uid := range []int64{1, 1, 2} {
		_, err := repo.Create(ctx, &models.Claim{UserID: uid, Location: "L", Hash: "h", CreatedAt: t0.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})

	n, err := repo.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImages_ByUserGoesThroughClaims(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c1, err := s.Claims(nil).Create(ctx, &models.Claim{UserID: 1})
	require.NoError(t, err)
	c2, err := s.Claims(nil).Create(ctx, &models.Claim{UserID: 2})
	require.NoError(t, err)

	imgs := s.Images(nil)
	for _, cid := range []int64{c1.ID, c1.ID, c2.ID} {
		_, err := imgs.Create(ctx, &models.Image{ClaimID: cid, URL: "u", Hash: "h"})
		require.NoError(t, err)
	}

	n, err := imgs.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = imgs.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := imgs.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, c2.ID, left[0].ClaimID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.Users(tx).Create(ctx, &models.User{Email: "a@x.com"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.Users(nil).FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// the sequence is restored too
	u, err := s.Users(nil).Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.Claims(tx).Create(ctx, &models.Claim{UserID: 1, Description: ptr("d")})
		return err
	}))

	ok, err := s.Claims(nil).Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
