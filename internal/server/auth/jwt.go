package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTCodec signs tokens with HS256 using the raw secret bytes as the key.
// Only sub, iat and exp are embedded.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret []byte) *JWTCodec {
	return &JWTCodec{secret: secret}
}

func (c *JWTCodec) Encode(subject string, issuedAt, expiry time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiry),
	})

	return token.SignedString(c.secret)
}

func (c *JWTCodec) Decode(tokenString string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", decodeErr(classifyJWT(err), err)
	}
	if !token.Valid {
		return "", decodeErr(CauseSignature, nil)
	}
	if claims.Subject == "" {
		return "", decodeErr(CauseMalformed, errors.New("missing subject"))
	}

	return claims.Subject, nil
}

func classifyJWT(err error) Cause {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return CauseExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return CauseSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return CauseUnsupported
	default:
		return CauseMalformed
	}
}
