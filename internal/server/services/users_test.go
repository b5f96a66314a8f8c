package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/integrity"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate_StampsAndHashes(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@x.com")

	assert.Equal(t, testNow, u.CreatedAt)
	assert.Equal(t, testNow, u.UpdatedAt)
	assert.Equal(t, int64(1), u.Version)
	assert.True(t, f.users.hasher.Verify(u.PasswordHash, "secret123"))
}

func TestUserUpdate_PartialKeepsAbsentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	hash := u.PasswordHash

	got, err := f.users.Update(ctx, u.ID, models.UserInput{FirstName: ptr("Zed")}, merge.PartialMerge, 0)
	require.NoError(t, err)
	assert.Equal(t, "Zed", got.FirstName)
	assert.Equal(t, "Last", got.LastName)
	assert.Equal(t, hash, got.PasswordHash)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, testNow, got.CreatedAt)
}

func TestUserUpdate_FullReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")

	_, err := f.users.Update(ctx, u.ID, models.UserInput{Email: ptr("a@x.com"), FirstName: ptr("Zed")}, merge.FullReplace, 0)
	require.ErrorIs(t, err, common.ErrorValidation)
	e, _ := common.AsError(err)
	assert.Contains(t, e.Fields, "lastName")

	stored, err := f.users.Find(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Last", stored.LastName, "failed update is not applied")

	got, err := f.users.Update(ctx, u.ID, models.UserInput{
		Email: ptr("a@x.com"), FirstName: ptr("Zed"), LastName: ptr("Q"),
	}, merge.FullReplace, 0)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, got.PasswordHash, "absent password keeps the hash")
}

func TestUserUpdate_PasswordRehash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")

	got, err := f.users.Update(ctx, u.ID, models.UserInput{Password: ptr("new-password")}, merge.PartialMerge, 0)
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, got.PasswordHash)

	_, err = f.auth.Authenticate(ctx, "a@x.com", "new-password")
	assert.NoError(t, err)

	_, err = f.users.Update(ctx, u.ID, models.UserInput{Password: ptr("")}, merge.PartialMerge, 0)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, "a@x.com", "new-password")
	assert.NoError(t, err, "empty password keeps the hash")
}

func TestUserUpdate_EmailCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a@x.com")
	b := f.user(t, "b@x.com")

	_, err := f.users.Update(ctx, b.ID, models.UserInput{Email: ptr("a@x.com")}, merge.PartialMerge, 0)
	require.ErrorIs(t, err, common.ErrorDuplicate)

	stored, err := f.users.Find(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", stored.Email)
	assert.Equal(t, int64(1), stored.Version)
}

func TestUserUpdate_VersionConflictAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")

	_, err := f.users.Update(ctx, u.ID, models.UserInput{FirstName: ptr("A")}, merge.PartialMerge, 1)
	require.NoError(t, err)

	_, err = f.users.Update(ctx, u.ID, models.UserInput{FirstName: ptr("B")}, merge.PartialMerge, 1)
	require.ErrorIs(t, err, common.ErrVersionConflict)

	_, err = f.users.Update(ctx, 99, models.UserInput{}, merge.PartialMerge, 0)
	require.ErrorIs(t, err, common.ErrorNotFound)
	e, _ := common.AsError(err)
	assert.Equal(t, "User not found with id: 99", e.Message())
}

func TestUserGet_IncludesClaims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	f.claim(t, claimInput(u.ID))

	v, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, v.Claims, 1)
	assert.Equal(t, "Nairobi", v.Claims[0].Location)

	_, err = f.users.Get(ctx, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserDelete_Policies(t *testing.T) {
	ctx := context.Background()

	t.Run("reject", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "a@x.com")
		f.claim(t, claimInput(u.ID))

		require.ErrorIs(t, f.users.Delete(ctx, u.ID), common.ErrorValidation)
		_, err := f.users.Find(ctx, u.ID)
		assert.NoError(t, err)
	})

	t.Run("cascade", func(t *testing.T) {
		f := newFixture(t, withPolicy(integrity.Cascade))
		u := f.user(t, "a@x.com")
		f.claim(t, claimInput(u.ID))

		require.NoError(t, f.users.Delete(ctx, u.ID))
		all, err := f.claims.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.users.Delete(ctx, 5), common.ErrorNotFound)
	})
}

func TestUserDeleteAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a@x.com")
	f.user(t, "b@x.com")

	n, err := f.users.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserPassword_ByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("€", 30)

	_, err := f.users.Create(ctx, models.UserInput{
		Email: ptr("b@x.com"), FirstName: ptr("B"), LastName: ptr("C"), Password: ptr(long),
	})
	require.ErrorIs(t, err, common.ErrorValidation)
	var e *common.Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Fields, "password")

	u := f.user(t, "a@x.com")
	_, err = f.users.Update(ctx, u.ID, models.UserInput{Password: ptr(long)}, merge.PartialMerge, 0)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.users.Create(ctx, models.UserInput{
		Email: ptr("c@x.com"), FirstName: ptr("B"), LastName: ptr("C"), Password: ptr(strings.Repeat("€", 24)),
	})
	assert.NoError(t, err)
}
