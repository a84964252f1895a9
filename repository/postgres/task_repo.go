package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

type taskRepository struct {
	pool PgxPool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool PgxPool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, user_id, title, description, status, priority, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrValidation
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, status, priority)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, storeError(err)
	}

	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR priority = $3)
	ORDER BY created_at DESC, id DESC
	LIMIT $4 OFFSET $5
	`
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		string(filter.Status),
		string(filter.Priority),
		clampLimit(filter.Limit),
		offset,
	)
	if err != nil {
		return nil, storeError(err)
	}
	return collectTasks(rows)
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM tasks
	WHERE user_id = $1
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR priority = $3)
	`
	var total int64
	if err := r.pool.QueryRow(ctx, query,
		filter.UserID,
		string(filter.Status),
		string(filter.Priority),
	).Scan(&total); err != nil {
		return 0, storeError(err)
	}
	return total, nil
}

func (r *taskRepository) Update(ctx context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrTaskNotFound
	}

	const query = `
	UPDATE tasks
	SET title = COALESCE($3, title),
		description = COALESCE($4, description),
		status = COALESCE($5, status),
		priority = COALESCE($6, priority),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		userID,
		optional(patch.Title),
		optional(patch.Description),
		optional(patch.Status),
		optional(patch.Priority),
	)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Search(ctx context.Context, userID, query string, limit int) ([]domain.Task, error) {
	const sql = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	  AND (title ILIKE $2 OR description ILIKE $2)
	ORDER BY created_at DESC, id DESC
	LIMIT $3
	`
	if limit <= 0 {
		limit = searchLimit
	}
	rows, err := r.pool.Query(ctx, sql, userID, containsPattern(query), limit)
	if err != nil {
		return nil, storeError(err)
	}
	return collectTasks(rows)
}

// searchLimit bounds an unpaginated search.
const searchLimit = 1000

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task     domain.Task
		status   string
		priority string
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeError(err)
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return &task, nil
}
