package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestMonitor_RequiredChecksDecideHealth(t *testing.T) {
	m := New([]Check{
		{Name: "postgresql", Required: true, Probe: probe(nil)},
		{Name: "redis", Probe: probe(errors.New("down"))},
	}, 0, nil)

	status := m.Refresh(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, m.IsOnline())
	assert.Equal(t, map[string]bool{"postgresql": true, "redis": false}, m.GetStatus().Services)

	m.checks[0].Probe = probe(errors.New("refused"))
	m.Refresh(context.Background())
	assert.False(t, m.IsOnline())
}

func TestRedisCheck(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := New([]Check{RedisCheck(client, true)}, 0, nil)
	require.True(t, m.Refresh(context.Background()).Healthy)

	srv.Close()
	require.False(t, m.Refresh(context.Background()).Healthy)

	assert.False(t, New([]Check{PostgresCheck(nil)}, 0, nil).Refresh(context.Background()).Healthy)
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := New(nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
