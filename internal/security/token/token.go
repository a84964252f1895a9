// Package token mints and verifies signed, time-bounded session tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/fastygo/tasktrack/internal/security/keyring"
)

// DefaultTTL matches the session lifetime the service has always used.
const DefaultTTL = 7 * 24 * time.Hour

// clockSkew tolerates an iat slightly ahead of the verifying clock.
const clockSkew = time.Minute

var (
	// ErrTokenInvalid covers bad signatures, algorithms and malformed tokens.
	ErrTokenInvalid = errors.New("token: invalid")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token: expired")
)

// Token is a freshly issued credential.
type Token struct {
	Value     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is what Verify extracts from a valid token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs tokens with HS256 using the keyring's signing key.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option tweaks an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer builds an issuer. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(keys *keyring.Keyring, issuer string, ttl time.Duration, opts ...Option) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	i := &Issuer{
		key:    keys.SigningKey(),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL reports the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for userID valid for the configured TTL.
func (i *Issuer) Issue(userID string) (Token, error) {
	if userID == "" {
		return Token{}, ErrTokenInvalid
	}
	now := i.now().Truncate(time.Second)
	exp := now.Add(i.ttl)
	id := uuid.NewString()

	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   userID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify checks signature and expiry and returns the token's claims.
func (i *Issuer) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrTokenInvalid
	}

	// time-based claims are checked below against the issuer's own clock
	claims := &jwt.RegisteredClaims{}
	parsed, err := i.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.key, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrTokenInvalid
	}
	if i.issuer != "" && !claims.VerifyIssuer(i.issuer, true) {
		return Claims{}, ErrTokenInvalid
	}

	now := i.now()
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(now.Add(clockSkew)) {
		return Claims{}, ErrTokenInvalid
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return Claims{}, ErrTokenExpired
	}

	out := Claims{
		Subject:   claims.Subject,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
