// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 12

// ErrInvalidCredentialFormat means the stored digest is not a bcrypt hash.
var ErrInvalidCredentialFormat = errors.New("password: malformed credential digest")

// Hasher produces salted one-way digests. The salt lives inside the digest.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a hasher with the given cost; values outside bcrypt's
// range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), cost)
	if err != nil {
		panic(err)
	}
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns the bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares plaintext against digest in constant time. A mismatch is
// (false, nil); only a malformed digest yields an error.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrInvalidCredentialFormat, err)
	}
}

// Equalize spends the same work as a real comparison. Call it when there is
// no digest to compare against so the response time gives nothing away.
func (h *Hasher) Equalize(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
