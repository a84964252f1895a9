// Package fieldcipher encrypts individual string fields with AES-256-GCM.
//
// Envelopes look like "enc:v1:<nonce>:<tag>:<ciphertext>" with every part
// hex encoded. Values without the prefix are treated as legacy plaintext by
// Open; Decrypt always requires an envelope.
package fieldcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/security/keyring"
)

// Prefix marks a value as produced by Encrypt.
const Prefix = "enc:v1:"

const (
	nonceSize = 16
	tagSize   = 16
)

// Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// Opened is the result of Open. Legacy is set when the stored value was
// never encrypted and is returned as is.
type Opened struct {
	Value  string
	Legacy bool
}

// New builds a cipher from the keyring's encryption key.
func New(keys *keyring.Keyring) (*Cipher, error) {
	if keys == nil {
		return nil, keyring.ErrMissingSecret
	}
	block, err := aes.NewCipher(keys.EncryptionKey())
	if err != nil {
		return nil, fmt.Errorf("fieldcipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("fieldcipher: %w", err)
	}
	return &Cipher{aead: aead, rand: rand.Reader}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("fieldcipher: nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	var b strings.Builder
	b.Grow(len(Prefix) + 2*(nonceSize+tagSize+len(ct)) + 2)
	b.WriteString(Prefix)
	b.WriteString(hex.EncodeToString(nonce))
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(tag))
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(ct))
	return b.String(), nil
}

// Decrypt opens an envelope produced by Encrypt.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	body, ok := strings.CutPrefix(envelope, Prefix)
	if !ok {
		return "", domain.ErrDecryptionFailed
	}
	parts := strings.Split(body, ":")
	if len(parts) != 3 {
		return "", domain.ErrDecryptionFailed
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", domain.ErrDecryptionFailed
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", domain.ErrDecryptionFailed
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	plain, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeDecryption, domain.ErrDecryptionFailed.Message, err)
	}
	return string(plain), nil
}

// Open decrypts value when it carries the envelope prefix and passes it
// through unchanged otherwise. A marked value that fails to decrypt is an
// error, never a passthrough.
func (c *Cipher) Open(value string) (Opened, error) {
	if !strings.HasPrefix(value, Prefix) {
		return Opened{Value: value, Legacy: true}, nil
	}
	plain, err := c.Decrypt(value)
	if err != nil {
		return Opened{}, err
	}
	return Opened{Value: plain}, nil
}

// EncryptFields returns a copy of fields with the named entries encrypted.
// Names missing from fields are skipped.
func (c *Cipher) EncryptFields(fields map[string]string, names ...string) (map[string]string, error) {
	out := clone(fields)
	for _, name := range names {
		v, ok := out[name]
		if !ok {
			continue
		}
		enc, err := c.Encrypt(v)
		if err != nil {
			return nil, err
		}
		out[name] = enc
	}
	return out, nil
}

// DecryptFields returns a copy of fields with the named entries opened.
// Legacy plaintext entries are kept as they are.
func (c *Cipher) DecryptFields(fields map[string]string, names ...string) (map[string]string, error) {
	out := clone(fields)
	for _, name := range names {
		v, ok := out[name]
		if !ok {
			continue
		}
		opened, err := c.Open(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = opened.Value
	}
	return out, nil
}

func clone(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
