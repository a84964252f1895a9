package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, RevocationRedis, cfg.Revocation.Backend)
	assert.Equal(t, 10*1024, cfg.HTTP.BodyLimit)
	assert.Empty(t, cfg.Security.PIIFields)
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.Database.URL, "postgres://tasktrack:pw@localhost:5432/tasktrack")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2d")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PII_ENCRYPTED_FIELDS", " email, ,name ")
	t.Setenv("REVOCATION_BACKEND", "BOLT")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"email", "name"}, cfg.Security.PIIFields)
	assert.Equal(t, RevocationBolt, cfg.Revocation.Backend)
	assert.Equal(t, 3*time.Second, cfg.Context.RequestTimeout)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REVOCATION_BACKEND", "memcached")
	_, err := Load()
	require.Error(t, err)
}
