// Package auth issues and validates stateless bearer tokens and stores
// passwords as one-way salted hashes.
//
// A token carries only the subject (the account email), its issue time and
// its expiry. There is no server-side session record: a token stays valid
// until it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/kinganjia/backend/internal/server/config"
)

// Cause tells why a token was rejected. It is logged, never returned to clients.
type Cause string

const (
	CauseExpired     Cause = "expired"
	CauseSignature   Cause = "signature"
	CauseMalformed   Cause = "malformed"
	CauseUnsupported Cause = "unsupported"
)

// DecodeError is returned by Codec.Decode.
type DecodeError struct {
	Cause Cause
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Cause)
	}
	return fmt.Sprintf("token %s: %v", e.Cause, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(cause Cause, err error) error {
	return &DecodeError{Cause: cause, Err: err}
}

// CauseOf returns the rejection cause of err, or CauseMalformed when err did
// not come from a Codec.
func CauseOf(err error) Cause {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Cause
	}
	return CauseMalformed
}

// Codec signs and verifies the token payload. A token is valid iff the
// signature verifies and now is strictly before its expiry.
type Codec interface {
	Encode(subject string, issuedAt, expiry time.Time) (string, error)
	Decode(token string, now time.Time) (subject string, err error)
}

// NewCodec builds the codec for the configured token format.
func NewCodec(format string, secret []byte) (Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	switch format {
	case config.TokenFormatJWT, "":
		return NewJWTCodec(secret), nil
	case config.TokenFormatPaseto:
		return NewPasetoCodec(secret)
	default:
		return nil, fmt.Errorf("auth: unknown token format %q", format)
	}
}
