package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/auth"
	"github.com/kinganjia/backend/internal/server/events"
	"github.com/kinganjia/backend/internal/server/integrity"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/memory"
	"github.com/kinganjia/backend/internal/timex"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	b      *Backend
	events *recorder
	tokens *auth.TokenManager

	auth   *AuthService
	users  *UserService
	claims *ClaimService
	images *ImageService
}

type fixtureOpt func(*Backend)

func withPolicy(p integrity.Policy) fixtureOpt { return func(b *Backend) { b.DeletePolicy = p } }
func withOwnership() fixtureOpt                { return func(b *Backend) { b.EnforceOwnership = true } }

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := &recorder{}
	b := &Backend{
		TX:     store,
		Repos:  store,
		Events: rec,
		Now:    timex.Fixed(testNow),
		Log:    logging.Nop{},
	}
	for _, o := range opts {
		o(b)
	}

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := auth.NewTokenManager(auth.NewJWTCodec([]byte("test-secret")), time.Hour, logging.Nop{}, auth.WithClock(timex.Fixed(testNow)))
	require.NoError(t, err)

	users := NewUserService(b, hasher)
	return &fixture{
		store:  store,
		b:      b,
		events: rec,
		tokens: tokens,
		auth:   NewAuthService(b, users, tokens, hasher),
		users:  users,
		claims: NewClaimService(b),
		images: NewImageService(b, nil),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), models.UserInput{
		Email:     ptr(email),
		FirstName: ptr("First"),
		LastName:  ptr("Last"),
		Password:  ptr("secret123"),
	})
	require.NoError(t, err)
	return u
}

func claimInput(userID int64) models.ClaimInput {
	return models.ClaimInput{
		UserID:    ptr(userID),
		Location:  ptr("Nairobi"),
		Latitude:  ptr(-1.2921),
		Longitude: ptr(36.8219),
		Hash:      ptr("claim-hash"),
	}
}

func (f *fixture) claim(t *testing.T, in models.ClaimInput) *models.ClaimView {
	t.Helper()
	v, err := f.claims.Create(context.Background(), in)
	require.NoError(t, err)
	return v
}
