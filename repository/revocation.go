package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

// RevocationRepository is the logout denylist. Entries only need to live
// until the revoked token expires.
type RevocationRepository interface {
	Revoke(ctx context.Context, revocation domain.Revocation) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
