package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

// TaskFilter selects an owner's tasks. UserID is mandatory.
type TaskFilter struct {
	UserID   string
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Limit    int
	Offset   int
}

// TaskRepository persists tasks. Every write and point read is keyed by
// (id, owner) so one user can never reach another user's rows.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	Update(ctx context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Search(ctx context.Context, userID, query string, limit int) ([]domain.Task, error)
}
