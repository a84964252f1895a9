package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

// UserRepository is the credential store. Emails are stored normalized and
// must be unique; writes that collide fail with domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
}
