package auth

import (
	"context"
	"errors"
	"time"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/timex"
)

// Token is an issued bearer token.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues tokens for an identity and validates presented ones.
type TokenManager struct {
	codec    Codec
	lifetime time.Duration
	now      timex.Clock
	log      logging.Logger
}

type Option func(*TokenManager)

// WithClock overrides the time source, mainly for tests.
func WithClock(c timex.Clock) Option {
	return func(m *TokenManager) { m.now = c }
}

func NewTokenManager(codec Codec, lifetime time.Duration, log logging.Logger, opts ...Option) (*TokenManager, error) {
	if codec == nil {
		return nil, errors.New("auth: nil codec")
	}
	if lifetime <= 0 {
		return nil, errors.New("auth: token lifetime must be positive")
	}
	if log == nil {
		log = logging.Nop{}
	}
	m := &TokenManager{
		codec:    codec,
		lifetime: lifetime,
		now:      time.Now,
		log:      log.With("module", "auth"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a token asserting identity, valid for the configured lifetime.
// Token times carry whole seconds so they match the encoded iat and exp.
func (m *TokenManager) Issue(identity string) (Token, error) {
	if identity == "" {
		return Token{}, errors.New("auth: empty identity")
	}
	now := m.now().Truncate(time.Second)
	exp := now.Add(m.lifetime)

	value, err := m.codec.Encode(identity, now, exp)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: value, IssuedAt: now, ExpiresAt: exp}, nil
}

// Validate returns the identity carried by token. Every failure surfaces as
// common.ErrInvalidToken; the specific cause is only logged.
func (m *TokenManager) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}

	identity, err := m.codec.Decode(token, m.now())
	if err != nil {
		m.log.Warn(ctx, "token rejected", "cause", string(CauseOf(err)), "error", err)
		return "", common.ErrInvalidToken
	}

	return identity, nil
}

// ExpirationWindow is the configured token lifetime.
func (m *TokenManager) ExpirationWindow() time.Duration {
	return m.lifetime
}
