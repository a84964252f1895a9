package keyring

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New("", "x")
	require.ErrorIs(t, err, ErrMissingSecret)

	k, err := New("sign", "")
	require.NoError(t, err)
	want := sha256.Sum256([]byte("sign"))
	assert.Equal(t, want[:], k.EncryptionKey())
	assert.Len(t, k.EncryptionKey(), 32)

	k2, err := New("sign", "enc")
	require.NoError(t, err)
	assert.NotEqual(t, k.EncryptionKey(), k2.EncryptionKey())
}

func TestKeyring_DoesNotLeak(t *testing.T) {
	k, err := New("super-secret", "")
	require.NoError(t, err)
	assert.NotContains(t, fmt.Sprint(k), "super-secret")

	key := k.SigningKey()
	key[0] = 'X'
	assert.Equal(t, []byte("super-secret"), k.SigningKey())
}
