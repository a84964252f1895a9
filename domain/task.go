package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxQueryLength       = 100
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// TaskInput carries the fields accepted on creation. Empty status and
// priority fall back to pending and medium.
type TaskInput struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
}

// Normalize trims, validates and applies defaults.
func (in TaskInput) Normalize() (TaskInput, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return TaskInput{}, err
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return TaskInput{}, err
	}
	out := TaskInput{
		Title:       title,
		Description: description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if out.Status == "" {
		out.Status = StatusPending
	}
	if !out.Status.Valid() {
		return TaskInput{}, errInvalidStatus
	}
	if out.Priority == "" {
		out.Priority = PriorityMedium
	}
	if !out.Priority.Valid() {
		return TaskInput{}, errInvalidPriority
	}
	return out, nil
}

// TaskPatch is a partial task update. Nil fields keep their stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// Normalize validates every present field and returns a trimmed copy.
func (p TaskPatch) Normalize() (TaskPatch, error) {
	if p.Empty() {
		return TaskPatch{}, Invalid("provide at least one field to update")
	}
	var out TaskPatch
	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return TaskPatch{}, err
		}
		out.Title = &title
	}
	if p.Description != nil {
		description, err := normalizeDescription(*p.Description)
		if err != nil {
			return TaskPatch{}, err
		}
		out.Description = &description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return TaskPatch{}, errInvalidStatus
		}
		status := *p.Status
		out.Status = &status
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return TaskPatch{}, errInvalidPriority
		}
		priority := *p.Priority
		out.Priority = &priority
	}
	return out, nil
}

// ListQuery filters and pages a task listing.
type ListQuery struct {
	Status   TaskStatus
	Priority TaskPriority
	Page     int
	Limit    int
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

// TaskPage is one page of an owner's tasks.
type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// TaskStats is a display aggregate; the counts are not read from one snapshot.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

var (
	errInvalidStatus   = Invalid("status must be pending, in-progress, or completed")
	errInvalidPriority = Invalid("priority must be low, medium, or high")
)

// ParseStatusFilter accepts an empty filter or one of the known statuses.
func ParseStatusFilter(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.TrimSpace(raw))
	if s == "" || s.Valid() {
		return s, nil
	}
	return "", errInvalidStatus
}

// ParsePriorityFilter accepts an empty filter or one of the known priorities.
func ParsePriorityFilter(raw string) (TaskPriority, error) {
	p := TaskPriority(strings.TrimSpace(raw))
	if p == "" || p.Valid() {
		return p, nil
	}
	return "", errInvalidPriority
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", Invalid("task title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", Invalid("title cannot exceed 100 characters")
	}
	return title, nil
}

func normalizeDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", Invalid("description cannot exceed 500 characters")
	}
	return description, nil
}
