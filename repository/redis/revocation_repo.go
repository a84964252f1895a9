package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

type revocationRepository struct {
	client redislib.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRevocationRepository creates a Redis-backed logout denylist. Each entry
// expires together with the token it revokes, so the key space stays bounded.
func NewRevocationRepository(client redislib.UniversalClient) repository.RevocationRepository {
	return &revocationRepository{
		client: client,
		prefix: "revoked:",
		now:    time.Now,
	}
}

func (r *revocationRepository) Revoke(ctx context.Context, revocation domain.Revocation) error {
	if revocation.TokenID == "" {
		return domain.ErrValidation
	}

	ttl := revocation.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(revocation)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(revocation.TokenID), payload, ttl).Err(); err != nil {
		return domain.Unavailable(err)
	}
	return nil
}

func (r *revocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, domain.Unavailable(err)
	}
	return n > 0, nil
}

func (r *revocationRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
