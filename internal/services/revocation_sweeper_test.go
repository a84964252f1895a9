package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository/bolt"
)

func TestRevocationSweeper_SweepsExpiredEntries(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "revocations.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "short", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "long", ExpiresAt: time.Now().Add(time.Hour)}))

	sweeper := NewRevocationSweeper(store, nil, SweeperConfig{Interval: time.Hour})
	sweeper.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	removed, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
	revoked, err := store.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationSweeper_StartStop(t *testing.T) {
	sweeper := NewRevocationSweeper(nil, nil, SweeperConfig{})
	sweeper.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sweeper.Stop(ctx))

	removed, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)
}
