// Package keyring holds the process-wide secret material. It is built once
// at startup and handed by reference to the token issuer and field cipher.
package keyring

import (
	"crypto/sha256"
	"errors"
)

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("keyring: signing secret is required")

// Keyring is read-only after construction.
type Keyring struct {
	signing    []byte
	encryption [sha256.Size]byte
}

// New builds a keyring. An empty encryption secret falls back to the signing secret.
func New(signingSecret, encryptionSecret string) (*Keyring, error) {
	if signingSecret == "" {
		return nil, ErrMissingSecret
	}
	if encryptionSecret == "" {
		encryptionSecret = signingSecret
	}
	return &Keyring{
		signing:    []byte(signingSecret),
		encryption: sha256.Sum256([]byte(encryptionSecret)),
	}, nil
}

// SigningKey returns a copy of the HMAC key for session tokens.
func (k *Keyring) SigningKey() []byte {
	return append([]byte(nil), k.signing...)
}

// EncryptionKey returns the 32-byte AES key derived from the configured secret.
func (k *Keyring) EncryptionKey() []byte {
	key := k.encryption
	return key[:]
}

// String keeps key material out of logs and fmt output.
func (k *Keyring) String() string {
	return "keyring(redacted)"
}
