package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskInput_NormalizeDefaults(t *testing.T) {
	in, err := TaskInput{Title: "  Buy milk  "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", in.Title)
	assert.Equal(t, StatusPending, in.Status)
	assert.Equal(t, PriorityMedium, in.Priority)
}

func TestTaskInput_NormalizeRejects(t *testing.T) {
	cases := map[string]TaskInput{
		"empty title":      {Title: ""},
		"blank title":      {Title: "   "},
		"long title":       {Title: strings.Repeat("a", 101)},
		"long description": {Title: "ok", Description: strings.Repeat("d", 501)},
		"bad status":       {Title: "ok", Status: "done"},
		"bad priority":     {Title: "ok", Priority: "urgent"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := in.Normalize()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestTaskInput_TitleLengthCountsRunes(t *testing.T) {
	_, err := TaskInput{Title: strings.Repeat("é", 100)}.Normalize()
	require.NoError(t, err)
}

func TestTaskPatch_Normalize(t *testing.T) {
	_, err := TaskPatch{}.Normalize()
	require.ErrorIs(t, err, ErrValidation)

	title := "  new  "
	status := StatusCompleted
	out, err := TaskPatch{Title: &title, Status: &status}.Normalize()
	require.NoError(t, err)
	require.NotNil(t, out.Title)
	assert.Equal(t, "new", *out.Title)
	assert.Equal(t, StatusCompleted, *out.Status)
	assert.Nil(t, out.Priority)
	assert.Equal(t, "  new  ", title, "input must not be modified")

	blank := " "
	_, err = TaskPatch{Title: &blank}.Normalize()
	require.ErrorIs(t, err, ErrValidation)

	bad := TaskPriority("urgent")
	_, err = TaskPatch{Priority: &bad}.Normalize()
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseFilters(t *testing.T) {
	s, err := ParseStatusFilter("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	s, err = ParseStatusFilter("")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = ParseStatusFilter("archived")
	require.ErrorIs(t, err, ErrValidation)

	p, err := ParsePriorityFilter("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriorityFilter("urgent")
	require.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	for _, raw := range []string{"", "not-an-email", "Bob <bob@example.com>", strings.Repeat("a", 250) + "@x.io"} {
		_, err := NormalizeEmail(raw)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}

func TestErrorIsByCode(t *testing.T) {
	wrapped := WrapError(ErrCodeTaskNotFound, "task not found", errors.New("no rows"))
	assert.ErrorIs(t, wrapped, ErrTaskNotFound)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)
	assert.Equal(t, ErrCodeTaskNotFound, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: secret detail")))
	assert.Equal(t, "storage unavailable", PublicMessage(Unavailable(errors.New("dial tcp"))))
}
