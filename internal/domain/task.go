package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskProjectIDEmpty is returned when a task has no owning project.
	// Every task belongs to a project; unassigned tasks live in the Inbox.
	ErrTaskProjectIDEmpty = errors.New("task project ID cannot be empty")
)

// TaskStatus is one of the fixed, ordered set of board lanes a task can
// occupy. Lane ordering (lane_order) is only meaningful within one status.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusParkingLot TaskStatus = "parking_lot"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists every valid lane in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusBlocked,
	TaskStatusParkingLot,
	TaskStatusDone,
}

// IsValid reports whether the status is one of the five board lanes.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusBlocked,
		TaskStatusParkingLot, TaskStatusDone:
		return true
	}
	return false
}

// IsTerminal reports whether the status is the terminal "done" lane.
// Recurrence spawning fires only on the transition into it.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone
}

// NormalizeTaskStatus maps a raw imported status value onto the lane
// vocabulary: lower-cased, whitespace replaced with underscores, and
// anything unrecognized defaults to "todo".
func NormalizeTaskStatus(raw string) TaskStatus {
	s := TaskStatus(strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "_"))
	if !s.IsValid() {
		return TaskStatusTodo
	}
	return s
}

// TaskPriority is the coarse priority bucket for a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is a known bucket.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// NormalizeTaskPriority maps a raw imported priority value onto the
// priority buckets. Anything unrecognized defaults to "medium".
func NormalizeTaskPriority(raw string) TaskPriority {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return TaskPriorityMedium
	}
	return p
}

// Recurrence is a task's repetition rule. A recurring task spawns its
// successor when it crosses into the done lane.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// IsValid reports whether the recurrence is a known rule.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

// Interval returns the shift applied to a completed occurrence's dates
// when computing the successor, or zero for non-recurring tasks.
func (r Recurrence) Interval() time.Duration {
	switch r {
	case RecurrenceDaily:
		return 24 * time.Hour
	case RecurrenceWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Task is a single tracked item on the board. Within its status lane the
// LaneOrder values of all tasks form a dense 0..n-1 sequence.
type Task struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Details       string       `json:"details"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	DueDate       *time.Time   `json:"due_date"`
	ScheduledDate *time.Time   `json:"scheduled_date"`
	CompletedAt   *time.Time   `json:"completed_at"`
	ProjectID     uuid.UUID    `json:"project_id"`
	Source        string       `json:"source"`
	Recurrence    Recurrence   `json:"recurrence"`
	LaneOrder     int          `json:"lane_order"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewTask creates a task in the given project with defaults applied:
// status todo, priority medium, recurrence none. The lane order is left
// at zero; placement is assigned by the board when the task is stored.
func NewTask(projectID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:         uuid.New(),
		Title:      title,
		Status:     TaskStatusTodo,
		Priority:   TaskPriorityMedium,
		ProjectID:  projectID,
		Source:     SourceManual,
		Recurrence: RecurrenceNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}
	if t.ProjectID == uuid.Nil {
		return ErrTaskProjectIDEmpty
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "is not a known priority", ErrValidation)
	}
	if !t.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	return nil
}

// NextOccurrence builds the successor task spawned when a recurring task
// crosses into the done lane. Due and scheduled dates shift by the
// recurrence interval; a nil date stays nil. The successor starts in the
// todo lane with everything else copied from the completed occurrence.
// Returns nil for tasks without a recurrence rule.
func (t *Task) NextOccurrence(now time.Time) *Task {
	interval := t.Recurrence.Interval()
	if interval == 0 {
		return nil
	}

	next := &Task{
		ID:         uuid.New(),
		Title:      t.Title,
		Details:    t.Details,
		Status:     TaskStatusTodo,
		Priority:   t.Priority,
		ProjectID:  t.ProjectID,
		Source:     t.Source,
		Recurrence: t.Recurrence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if t.DueDate != nil {
		due := t.DueDate.Add(interval)
		next.DueDate = &due
	}
	if t.ScheduledDate != nil {
		scheduled := t.ScheduledDate.Add(interval)
		next.ScheduledDate = &scheduled
	}
	return next
}

// SourceManual is the provenance tag for entities created directly by
// the user rather than by an import.
const SourceManual = "manual"
