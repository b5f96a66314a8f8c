package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/hkdf"
)

const pasetoLocalPrefix = "v4.local."

// PasetoCodec encrypts tokens as PASETO v4.local. The 32-byte symmetric key
// is derived from the configured secret with HKDF-SHA256.
type PasetoCodec struct {
	key paseto.V4SymmetricKey
}

func NewPasetoCodec(secret []byte) (*PasetoCodec, error) {
	raw, err := deriveKey(secret, 32)
	if err != nil {
		return nil, err
	}
	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("auth: paseto key: %w", err)
	}
	return &PasetoCodec{key: key}, nil
}

func deriveKey(secret []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte("kinganjia token key"))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("auth: derive key: %w", err)
	}
	return out, nil
}

func (c *PasetoCodec) Encode(subject string, issuedAt, expiry time.Time) (string, error) {
	tok := paseto.NewToken()
	tok.SetSubject(subject)
	tok.SetIssuedAt(issuedAt)
	tok.SetExpiration(expiry)

	return tok.V4Encrypt(c.key, nil), nil
}

func (c *PasetoCodec) Decode(token string, now time.Time) (string, error) {
	if !strings.HasPrefix(token, pasetoLocalPrefix) {
		if strings.HasPrefix(token, "v") && strings.Count(token, ".") >= 2 {
			return "", decodeErr(CauseUnsupported, errors.New("not a v4.local token"))
		}
		return "", decodeErr(CauseMalformed, nil)
	}

	// Expiry is checked against the injected clock below, not time.Now.
	parser := paseto.NewParserWithoutExpiryCheck()
	parsed, err := parser.ParseV4Local(c.key, token, nil)
	if err != nil {
		return "", decodeErr(CauseSignature, err)
	}

	exp, err := parsed.GetExpiration()
	if err != nil {
		return "", decodeErr(CauseMalformed, err)
	}
	if !now.Before(exp) {
		return "", decodeErr(CauseExpired, nil)
	}

	subject, err := parsed.GetSubject()
	if err != nil || subject == "" {
		return "", decodeErr(CauseMalformed, err)
	}

	return subject, nil
}
