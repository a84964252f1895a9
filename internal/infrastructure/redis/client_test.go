package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/internal/config"
)

func TestNewClient(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()

	client, err := NewClient(context.Background(), config.RedisConfig{URL: "redis://" + addr}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	Close(client, nil)

	srv.Close()
	_, err = NewClient(context.Background(), config.RedisConfig{URL: "redis://" + addr}, nil)
	require.Error(t, err)

	_, err = NewClient(context.Background(), config.RedisConfig{URL: "::not a url"}, nil)
	require.Error(t, err)
}
