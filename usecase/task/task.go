// Package task implements the owner-scoped task service.
package task

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) Create(ctx context.Context, identity domain.Identity, in domain.TaskInput) (*domain.Task, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	clean, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	task := &domain.Task{
		UserID:      identity.UserID,
		Title:       clean.Title,
		Description: clean.Description,
		Status:      clean.Status,
		Priority:    clean.Priority,
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.String("user_id", identity.UserID), zap.String("task_id", created.ID))
	return created, nil
}

// List returns one page of the caller's tasks, newest first.
func (uc *UseCase) List(ctx context.Context, identity domain.Identity, q domain.ListQuery) (*domain.TaskPage, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, domain.Invalid("status must be pending, in-progress, or completed")
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, domain.Invalid("priority must be low, medium, or high")
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := repository.TaskFilter{
		UserID:   identity.UserID,
		Status:   q.Status,
		Priority: q.Priority,
		Limit:    limit,
	}
	tasks := make([]domain.Task, 0)
	// a page whose offset does not fit in an int lies past any stored row
	if page-1 <= math.MaxInt/limit {
		filter.Offset = (page - 1) * limit
		var err error
		if tasks, err = uc.tasks.List(ctx, filter); err != nil {
			return nil, err
		}
	}
	total, err := uc.tasks.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.TaskPage{
		Tasks: tasks,
		Pagination: domain.Pagination{
			Total: total,
			Page:  page,
			Pages: pageCount(total, limit),
		},
	}, nil
}

func (uc *UseCase) Update(ctx context.Context, identity domain.Identity, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	clean, err := patch.Normalize()
	if err != nil {
		return nil, err
	}
	return uc.tasks.Update(ctx, taskID, identity.UserID, clean)
}

func (uc *UseCase) Delete(ctx context.Context, identity domain.Identity, taskID string) error {
	if identity.IsZero() {
		return domain.ErrUnauthenticated
	}
	return uc.tasks.Delete(ctx, taskID, identity.UserID)
}

// Search matches query case-insensitively against title and description.
// Results are not paginated.
func (uc *UseCase) Search(ctx context.Context, identity domain.Identity, query string) ([]domain.Task, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if utf8.RuneCountInString(query) > domain.MaxQueryLength {
		return nil, domain.NewError(domain.ErrCodeInvalidQuery, "search query cannot exceed 100 characters")
	}
	return uc.tasks.Search(ctx, identity.UserID, query, 0)
}

// Stats runs four independent counts; they are not read from one snapshot.
func (uc *UseCase) Stats(ctx context.Context, identity domain.Identity) (*domain.TaskStats, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	count := func(status domain.TaskStatus) (int64, error) {
		return uc.tasks.Count(ctx, repository.TaskFilter{UserID: identity.UserID, Status: status})
	}

	var (
		stats domain.TaskStats
		err   error
	)
	if stats.Total, err = count(""); err != nil {
		return nil, err
	}
	if stats.Pending, err = count(domain.StatusPending); err != nil {
		return nil, err
	}
	if stats.InProgress, err = count(domain.StatusInProgress); err != nil {
		return nil, err
	}
	if stats.Completed, err = count(domain.StatusCompleted); err != nil {
		return nil, err
	}
	return &stats, nil
}

func pageCount(total int64, limit int) int64 {
	if total <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
