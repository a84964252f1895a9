package task

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

// memoryTasks mirrors the postgres repository's semantics in memory.
type memoryTasks struct {
	mu    sync.Mutex
	rows  map[string]domain.Task
	clock time.Time
	err   error
}

func newMemoryTasks() *memoryTasks {
	return &memoryTasks{
		rows:  make(map[string]domain.Task),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryTasks) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryTasks) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	task.ID = uuid.NewString()
	task.CreatedAt = m.tick()
	task.UpdatedAt = task.CreatedAt
	m.rows[task.ID] = *task
	return task, nil
}

func (m *memoryTasks) matching(userID string, keep func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range m.rows {
		if t.UserID == userID && keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func filterFn(f repository.TaskFilter) func(domain.Task) bool {
	return func(t domain.Task) bool {
		return (f.Status == "" || t.Status == f.Status) && (f.Priority == "" || t.Priority == f.Priority)
	}
}

func (m *memoryTasks) List(_ context.Context, f repository.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	all := m.matching(f.UserID, filterFn(f))
	if f.Offset >= len(all) {
		return []domain.Task{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], nil
}

func (m *memoryTasks) Count(_ context.Context, f repository.TaskFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.matching(f.UserID, filterFn(f)))), nil
}

func (m *memoryTasks) Update(_ context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	t.UpdatedAt = m.tick()
	m.rows[id] = t
	return &t, nil
}

func (m *memoryTasks) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryTasks) Search(_ context.Context, userID, query string, _ int) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	return m.matching(userID, func(t domain.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q)
	}), nil
}

var (
	alice = domain.Identity{UserID: "alice"}
	bob   = domain.Identity{UserID: "bob"}
)

func mustCreate(t *testing.T, uc *UseCase, who domain.Identity, in domain.TaskInput) *domain.Task {
	t.Helper()
	task, err := uc.Create(context.Background(), who, in)
	require.NoError(t, err)
	return task
}

func TestCreate_Defaults(t *testing.T) {
	uc := New(newMemoryTasks(), nil)

	task := mustCreate(t, uc, alice, domain.TaskInput{Title: "Buy milk"})
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, "alice", task.UserID)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	for _, title := range []string{"", strings.Repeat("x", 101)} {
		_, err := uc.Create(context.Background(), alice, domain.TaskInput{Title: title})
		require.ErrorIs(t, err, domain.ErrValidation)
	}
	_, err := uc.Create(context.Background(), domain.Identity{}, domain.TaskInput{Title: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestList_Pagination(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	var created []*domain.Task
	for _, title := range []string{"t1", "t2", "t3", "t4", "t5"} {
		created = append(created, mustCreate(t, uc, alice, domain.TaskInput{Title: title}))
	}
	mustCreate(t, uc, bob, domain.TaskInput{Title: "bob's"})

	page, err := uc.List(ctx, alice, domain.ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 2)
	// newest first: t5 t4 | t3 t2 | t1
	assert.Equal(t, created[2].ID, page.Tasks[0].ID)
	assert.Equal(t, created[1].ID, page.Tasks[1].ID)
	assert.Equal(t, domain.Pagination{Total: 5, Page: 2, Pages: 3}, page.Pagination)

	page, err = uc.List(ctx, alice, domain.ListQuery{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.NotNil(t, page.Tasks)

	page, err = uc.List(ctx, alice, domain.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 5)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, int64(1), page.Pagination.Pages)

	empty, err := uc.List(ctx, domain.Identity{UserID: "carol"}, domain.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Pagination.Pages)
}

func TestList_PageBeyondOffsetRange(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	for _, title := range []string{"t1", "t2", "t3"} {
		mustCreate(t, uc, alice, domain.TaskInput{Title: title})
	}

	for _, limit := range []int{1, 10, MaxLimit} {
		page, err := uc.List(ctx, alice, domain.ListQuery{Page: math.MaxInt, Limit: limit})
		require.NoError(t, err)
		assert.NotNil(t, page.Tasks)
		assert.Empty(t, page.Tasks, "limit %d", limit)
		assert.Equal(t, math.MaxInt, page.Pagination.Page)
		assert.Equal(t, int64(3), page.Pagination.Total)
	}
}

func TestList_Filters(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	mustCreate(t, uc, alice, domain.TaskInput{Title: "a", Priority: domain.PriorityHigh})
	mustCreate(t, uc, alice, domain.TaskInput{Title: "b", Status: domain.StatusCompleted, Priority: domain.PriorityHigh})
	mustCreate(t, uc, alice, domain.TaskInput{Title: "c"})

	page, err := uc.List(ctx, alice, domain.ListQuery{Priority: domain.PriorityHigh, Status: domain.StatusPending})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "a", page.Tasks[0].Title)

	_, err = uc.List(ctx, alice, domain.ListQuery{Status: "archived"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateDelete_Ownership(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	task := mustCreate(t, uc, bob, domain.TaskInput{Title: "bob's task"})
	done := domain.StatusCompleted

	_, err := uc.Update(ctx, alice, task.ID, domain.TaskPatch{Status: &done})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	require.ErrorIs(t, uc.Delete(ctx, alice, task.ID), domain.ErrTaskNotFound)

	page, err := uc.List(ctx, bob, domain.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, domain.StatusPending, page.Tasks[0].Status)

	updated, err := uc.Update(ctx, bob, task.ID, domain.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "bob's task", updated.Title)
	assert.True(t, updated.UpdatedAt.After(task.CreatedAt))

	_, err = uc.Update(ctx, bob, task.ID, domain.TaskPatch{})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, uc.Delete(ctx, bob, task.ID))
	require.ErrorIs(t, uc.Delete(ctx, bob, task.ID), domain.ErrTaskNotFound)
}

func TestSearch(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	mustCreate(t, uc, alice, domain.TaskInput{Title: "Buy MILK"})
	mustCreate(t, uc, alice, domain.TaskInput{Title: "Groceries", Description: "eggs and milk"})
	mustCreate(t, uc, alice, domain.TaskInput{Title: "Walk the dog"})
	mustCreate(t, uc, bob, domain.TaskInput{Title: "milk for bob"})

	found, err := uc.Search(ctx, alice, "  milk ")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Groceries", found[0].Title)
	for _, task := range found {
		assert.Equal(t, "alice", task.UserID)
	}

	_, err = uc.Search(ctx, alice, "   ")
	require.ErrorIs(t, err, domain.ErrInvalidQuery)
	_, err = uc.Search(ctx, alice, strings.Repeat("q", 101))
	require.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestStats(t *testing.T) {
	uc := New(newMemoryTasks(), nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mustCreate(t, uc, alice, domain.TaskInput{Title: "p"})
	}
	mustCreate(t, uc, alice, domain.TaskInput{Title: "i", Status: domain.StatusInProgress})
	for i := 0; i < 2; i++ {
		mustCreate(t, uc, alice, domain.TaskInput{Title: "c", Status: domain.StatusCompleted})
	}
	mustCreate(t, uc, bob, domain.TaskInput{Title: "other"})

	stats, err := uc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{Total: 6, Pending: 3, InProgress: 1, Completed: 2}, *stats)
}

func TestStoreErrorsPropagate(t *testing.T) {
	repo := newMemoryTasks()
	uc := New(repo, nil)
	repo.err = domain.Unavailable(errors.New("connection refused"))

	_, err := uc.Stats(context.Background(), alice)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = uc.List(context.Background(), alice, domain.ListQuery{})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, int64(0), pageCount(0, 10))
	assert.Equal(t, int64(1), pageCount(10, 10))
	assert.Equal(t, int64(2), pageCount(11, 10))
}
