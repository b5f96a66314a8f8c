package services

import (
	"context"
	"testing"

	"github.com/kinganjia/backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, "a@x.com", "Ann", "Lee", "secret123")
	require.NoError(t, err)
	assert.NotZero(t, reg.User.ID)
	assert.NotEqual(t, "secret123", reg.User.PasswordHash)
	assert.Equal(t, testNow.Add(f.tokens.ExpirationWindow()), reg.Token.ExpiresAt)

	login, err := f.auth.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	email, err := f.tokens.Validate(ctx, login.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
	assert.Equal(t, int64(3600), f.auth.ExpirationWindow())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, "a@x.com", "Ann", "Lee", "secret123")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "a@x.com", "Bob", "Ray", "other-pass")
	require.ErrorIs(t, err, common.ErrorDuplicate)

	all, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.User.ID, all[0].ID)
	assert.Equal(t, "Ann", all[0].FirstName)

	_, err = f.auth.Authenticate(ctx, "a@x.com", "secret123")
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), "a@x.com", "", "Lee", "")
	require.ErrorIs(t, err, common.ErrorValidation)
	e, ok := common.AsError(err)
	require.True(t, ok)
	assert.Contains(t, e.Fields, "firstName")
	assert.Contains(t, e.Fields, "password")
}

func TestAuthenticate_FailuresLookTheSame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a@x.com")

	_, unknown := f.auth.Authenticate(ctx, "nobody@x.com", "secret123")
	_, wrong := f.auth.Authenticate(ctx, "a@x.com", "wrong-pass")

	require.ErrorIs(t, unknown, common.ErrorInvalidCredentials)
	require.ErrorIs(t, wrong, common.ErrorInvalidCredentials)

	e1, _ := common.AsError(unknown)
	e2, _ := common.AsError(wrong)
	assert.Equal(t, "Invalid email or password", e1.Message())
	assert.Equal(t, e1.Message(), e2.Message())
}

func TestCurrentIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.auth.Register(ctx, "a@x.com", "Ann", "Lee", "secret123")
	require.NoError(t, err)

	u, err := f.auth.CurrentIdentity(ctx, s.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, u.ID)

	_, err = f.auth.CurrentIdentity(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	f.auth.Logout(ctx, u)
	_, err = f.auth.CurrentIdentity(ctx, s.Token.Value)
	require.NoError(t, err, "logout does not revoke")

	require.NoError(t, f.users.Delete(ctx, u.ID))
	_, err = f.auth.CurrentIdentity(ctx, s.Token.Value)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
