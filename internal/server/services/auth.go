package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/auth"
	"github.com/kinganjia/backend/internal/server/models"
)

// Session is the outcome of a successful register or login.
type Session struct {
	User  *models.User
	Token auth.Token
}

// AuthService registers and authenticates users and resolves bearer tokens
// back to accounts. Tokens carry the user's email as subject.
type AuthService struct {
	b      *Backend
	users  *UserService
	tokens *auth.TokenManager
	hasher auth.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(b *Backend, users *UserService, tokens *auth.TokenManager, hasher auth.PasswordHasher) *AuthService {
	b.defaults()
	return &AuthService{b: b, users: users, tokens: tokens, hasher: hasher}
}

// Register creates the account and signs a token for it. A taken email
// fails with ErrorDuplicate and leaves the existing account untouched.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, rawPassword string) (*Session, error) {
	u, err := s.users.Create(ctx, models.UserInput{
		Email:     &email,
		FirstName: &firstName,
		LastName:  &lastName,
		Password:  &rawPassword,
	})
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// Authenticate checks credentials. An unknown email and a wrong password
// fail identically, and both run one hash verification.
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "auth.Authenticate"

	u, err := s.b.Repos.Users(s.b.TX.Conn()).FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.hasher.Verify(s.dummy(), rawPassword)
		s.b.Log.Info(ctx, "login failed", "reason", "unknown email")
		return nil, common.InvalidCredentials(op)
	}

	if !s.hasher.Verify(u.PasswordHash, rawPassword) {
		s.b.Log.Info(ctx, "login failed", "reason", "password mismatch", "user_id", u.ID)
		return nil, common.InvalidCredentials(op)
	}

	return s.session(u)
}

// CurrentIdentity validates token and re-reads the account it names, so a
// deleted account cannot keep using a still-valid token.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.CurrentIdentity"

	email, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, common.Unauthorized(op)
	}

	u, err := s.b.Repos.Users(s.b.TX.Conn()).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.b.Log.Warn(ctx, "token names a missing account", "email", email)
			return nil, common.Unauthorized(op)
		}
		return nil, err
	}
	return u, nil
}

// Logout has no server-side effect; the client discards its token, which
// stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, u *models.User) {
	if u != nil {
		s.b.Log.Info(ctx, "logout", "user_id", u.ID)
	}
}

func (s *AuthService) ExpirationWindow() int64 {
	return int64(s.tokens.ExpirationWindow().Seconds())
}

func (s *AuthService) session(u *models.User) (*Session, error) {
	t, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &Session{User: u, Token: t}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}
