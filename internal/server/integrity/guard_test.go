package integrity

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// seed creates one user owning one claim with two images.
func seed(t *testing.T, s *memory.Store) (models.User, models.Claim) {
	t.Helper()
	ctx := context.Background()

	u, err := s.Users(nil).Create(ctx, &models.User{Email: "u1@x.com", FirstName: "U", LastName: "One", PasswordHash: "h"})
	require.NoError(t, err)
	c, err := s.Claims(nil).Create(ctx, &models.Claim{UserID: u.ID, Location: "Nairobi", Hash: "c"})
	require.NoError(t, err)
	for _, h := range []string{"i1", "i2"} {
		_, err := s.Images(nil).Create(ctx, &models.Image{ClaimID: c.ID, URL: "https://x/" + h, Hash: h})
		require.NoError(t, err)
	}
	return *u, *c
}

func TestRequireUserAndClaim(t *testing.T) {
	s := memory.NewStore()
	u, c := seed(t, s)
	g := New(s, nil, Reject, logging.Nop{})
	ctx := context.Background()

	got, err := g.RequireUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = g.RequireUser(ctx, 404)
	require.ErrorIs(t, err, common.ErrorNotFound)
	e, ok := common.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "User not found with id: 404", e.Message())

	_, err = g.RequireClaim(ctx, c.ID)
	require.NoError(t, err)
	_, err = g.RequireClaim(ctx, 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNew_UnknownPolicyFallsBackToReject(t *testing.T) {
	g := New(memory.NewStore(), nil, Policy("bogus"), logging.Nop{})
	assert.Equal(t, Reject, g.Policy())
}

func TestBeforeDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("reject", func(t *testing.T) {
		s := memory.NewStore()
		u, _ := seed(t, s)
		err := New(s, nil, Reject, logging.Nop{}).BeforeDeleteUser(ctx, u.ID)
		require.ErrorIs(t, err, common.ErrorValidation)
		e, _ := common.AsError(err)
		assert.Contains(t, e.Fields, "claims")
	})

	t.Run("cascade", func(t *testing.T) {
		s := memory.NewStore()
		u, _ := seed(t, s)
		require.NoError(t, New(s, nil, Cascade, logging.Nop{}).BeforeDeleteUser(ctx, u.ID))

		n, _ := s.Claims(nil).CountAll(ctx)
		assert.Zero(t, n)
		n, _ = s.Images(nil).CountAll(ctx)
		assert.Zero(t, n)
	})

	t.Run("orphan", func(t *testing.T) {
		s := memory.NewStore()
		u, _ := seed(t, s)
		var buf bytes.Buffer
		require.NoError(t, New(s, nil, Orphan, logging.NewWithWriter(&buf, "debug")).BeforeDeleteUser(ctx, u.ID))

		n, _ := s.Claims(nil).CountAll(ctx)
		assert.Equal(t, int64(1), n)
		assert.Contains(t, buf.String(), "orphaned claims")
	})

	t.Run("no children", func(t *testing.T) {
		require.NoError(t, New(memory.NewStore(), nil, Reject, logging.Nop{}).BeforeDeleteUser(ctx, 1))
	})
}

func TestBeforeDeleteClaim(t *testing.T) {
	ctx := context.Background()

	s := memory.NewStore()
	_, c := seed(t, s)
	assert.ErrorIs(t, New(s, nil, Reject, logging.Nop{}).BeforeDeleteClaim(ctx, c.ID), common.ErrorValidation)

	require.NoError(t, New(s, nil, Orphan, logging.Nop{}).BeforeDeleteClaim(ctx, c.ID))
	n, _ := s.Images(nil).CountByClaimID(ctx, c.ID)
	assert.Equal(t, int64(2), n)

	require.NoError(t, New(s, nil, Cascade, logging.Nop{}).BeforeDeleteClaim(ctx, c.ID))
	n, _ = s.Images(nil).CountByClaimID(ctx, c.ID)
	assert.Zero(t, n)
}

func TestBeforeDeleteAll(t *testing.T) {
	ctx := context.Background()

	s := memory.NewStore()
	seed(t, s)
	assert.ErrorIs(t, New(s, nil, Reject, logging.Nop{}).BeforeDeleteAllUsers(ctx), common.ErrorValidation)
	assert.ErrorIs(t, New(s, nil, Reject, logging.Nop{}).BeforeDeleteAllClaims(ctx), common.ErrorValidation)
	require.NoError(t, New(s, nil, Orphan, logging.Nop{}).BeforeDeleteAllUsers(ctx))

	require.NoError(t, New(s, nil, Cascade, logging.Nop{}).BeforeDeleteAllClaims(ctx))
	n, _ := s.Images(nil).CountAll(ctx)
	assert.Zero(t, n)
	n, _ = s.Claims(nil).CountAll(ctx)
	assert.Equal(t, int64(1), n)

	require.NoError(t, New(s, nil, Cascade, logging.Nop{}).BeforeDeleteAllUsers(ctx))
	n, _ = s.Claims(nil).CountAll(ctx)
	assert.Zero(t, n)
}

func TestCascadeImages_InsertAndMerge(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	_, c := seed(t, s)
	g := New(s, nil, Reject, logging.Nop{})

	in := []models.ImageInput{
		{URL: ptr("https://x/new"), Hash: ptr("new")},
		{ID: ptr(int64(1)), Hash: ptr("i1-v2")},
	}

	out, err := g.CascadeImages(ctx, merge.PartialMerge, &c, in, now)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, c.ID, out[0].ClaimID)
	assert.Equal(t, now, out[0].CreatedAt)

	assert.Equal(t, "i1-v2", out[1].Hash)
	assert.Equal(t, "https://x/i1", out[1].URL, "partial merge keeps the url")
	assert.Equal(t, int64(2), out[1].Version)
}

func TestCascadeImages_Failures(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	_, c := seed(t, s)
	other, err := s.Claims(nil).Create(ctx, &models.Claim{UserID: 1, Location: "L", Hash: "o"})
	require.NoError(t, err)
	g := New(s, nil, Reject, logging.Nop{})

	_, err = g.CascadeImages(ctx, merge.FullReplace, &c, []models.ImageInput{{URL: ptr("u")}}, now)
	require.ErrorIs(t, err, common.ErrorValidation)
	e, _ := common.AsError(err)
	assert.Contains(t, e.Fields, "images[0].hash")

	_, err = g.CascadeImages(ctx, merge.FullReplace, &c, []models.ImageInput{{ID: ptr(int64(77))}}, now)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = g.CascadeImages(ctx, merge.PartialMerge, other, []models.ImageInput{{ID: ptr(int64(1))}}, now)
	require.ErrorIs(t, err, common.ErrorValidation)
	e, _ = common.AsError(err)
	assert.Contains(t, e.Fields, "images[0].id")
}
