package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "revocations.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RevokeAndCheck(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "a", ExpiresAt: time.Now().Add(time.Hour)}))

	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.ErrorIs(t, store.Revoke(ctx, domain.Revocation{}), domain.ErrValidation)
}

func TestStore_ExpiredEntriesAreIgnoredAndSwept(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "short", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "long", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "past", ExpiresAt: now.Add(-time.Minute)}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	store.now = func() time.Time { return now.Add(10 * time.Minute) }
	revoked, err := store.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)

	removed, err := store.Sweep(now.Add(10 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err = store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}
