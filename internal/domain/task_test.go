package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	task, err := NewTask(projectID, "Buy milk")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.Equal(t, RecurrenceNone, task.Recurrence)
	assert.Equal(t, SourceManual, task.Source)
	assert.Equal(t, projectID, task.ProjectID)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CompletedAt)
	assert.False(t, task.CreatedAt.IsZero())

	_, err = NewTask(projectID, "   ")
	assert.ErrorIs(t, err, ErrTaskTitleEmpty)

	_, err = NewTask(uuid.Nil, "Buy milk")
	assert.ErrorIs(t, err, ErrTaskProjectIDEmpty)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Task {
		task, err := NewTask(uuid.New(), "Buy milk")
		require.NoError(t, err)
		return task
	}

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		task := valid()
		task.Status = TaskStatus("doing")
		assert.ErrorIs(t, task.Validate(), ErrInvalidStatus)
	})

	t.Run("invalid priority", func(t *testing.T) {
		t.Parallel()
		task := valid()
		task.Priority = TaskPriority("urgent")
		assert.ErrorIs(t, task.Validate(), ErrValidation)
	})

	t.Run("invalid recurrence", func(t *testing.T) {
		t.Parallel()
		task := valid()
		task.Recurrence = Recurrence("monthly")
		assert.ErrorIs(t, task.Validate(), ErrInvalidRecurrence)
	})
}

func TestNormalizeTaskStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want TaskStatus
	}{
		{"todo", TaskStatusTodo},
		{"  Done ", TaskStatusDone},
		{"In Progress", TaskStatusInProgress},
		{"PARKING  LOT", TaskStatusParkingLot},
		{"blocked", TaskStatusBlocked},
		{"someday", TaskStatusTodo},
		{"", TaskStatusTodo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTaskStatus(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeTaskPriority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TaskPriorityHigh, NormalizeTaskPriority(" HIGH "))
	assert.Equal(t, TaskPriorityLow, NormalizeTaskPriority("low"))
	assert.Equal(t, TaskPriorityMedium, NormalizeTaskPriority("p1"))
	assert.Equal(t, TaskPriorityMedium, NormalizeTaskPriority(""))
}

func TestTaskStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, TaskStatusDone.IsTerminal())
	for _, s := range []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusBlocked, TaskStatusParkingLot} {
		assert.False(t, s.IsTerminal(), "status %q", s)
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	newRecurring := func(r Recurrence) *Task {
		task, err := NewTask(uuid.New(), "Water plants")
		require.NoError(t, err)
		task.Details = "the ones on the balcony"
		task.Priority = TaskPriorityHigh
		task.Recurrence = r
		task.Status = TaskStatusDone
		return task
	}

	t.Run("non-recurring task spawns nothing", func(t *testing.T) {
		t.Parallel()
		task := newRecurring(RecurrenceNone)
		assert.Nil(t, task.NextOccurrence(now))
	})

	t.Run("daily shifts dates by one day", func(t *testing.T) {
		t.Parallel()
		task := newRecurring(RecurrenceDaily)
		due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		scheduled := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
		task.DueDate = &due
		task.ScheduledDate = &scheduled

		next := task.NextOccurrence(now)
		require.NotNil(t, next)
		assert.NotEqual(t, task.ID, next.ID)
		assert.Equal(t, task.Title, next.Title)
		assert.Equal(t, task.Details, next.Details)
		assert.Equal(t, task.Priority, next.Priority)
		assert.Equal(t, task.ProjectID, next.ProjectID)
		assert.Equal(t, task.Recurrence, next.Recurrence)
		assert.Equal(t, TaskStatusTodo, next.Status)
		assert.Nil(t, next.CompletedAt)
		assert.Equal(t, due.AddDate(0, 0, 1), *next.DueDate)
		assert.Equal(t, scheduled.AddDate(0, 0, 1), *next.ScheduledDate)
	})

	t.Run("weekly shifts dates by seven days", func(t *testing.T) {
		t.Parallel()
		task := newRecurring(RecurrenceWeekly)
		due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		task.DueDate = &due

		next := task.NextOccurrence(now)
		require.NotNil(t, next)
		assert.Equal(t, due.AddDate(0, 0, 7), *next.DueDate)
	})

	t.Run("nil dates stay nil", func(t *testing.T) {
		t.Parallel()
		task := newRecurring(RecurrenceDaily)

		next := task.NextOccurrence(now)
		require.NotNil(t, next)
		assert.Nil(t, next.DueDate)
		assert.Nil(t, next.ScheduledDate)
	})
}
