package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/importer"
	"github.com/taskwell/taskwell-api/internal/patch"
)

// Common request/response structures

// LoginRequest defines the payload for the owner login endpoint.
type LoginRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title         string     `json:"title"          validate:"required,min=1"`
	Details       string     `json:"details"`
	Status        string     `json:"status"         validate:"omitempty,oneof=todo in_progress blocked parking_lot done"`
	Priority      string     `json:"priority"       validate:"omitempty,oneof=low medium high"`
	DueDate       *time.Time `json:"due_date"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	ProjectID     *uuid.UUID `json:"project_id"`
	Recurrence    string     `json:"recurrence"     validate:"omitempty,oneof=none daily weekly"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent keys leave the field alone; explicit nulls clear nullable
// fields.
type UpdateTaskRequest struct {
	Title         patch.Field[string]    `json:"title"`
	Details       patch.Field[string]    `json:"details"`
	Status        patch.Field[string]    `json:"status"`
	Priority      patch.Field[string]    `json:"priority"`
	DueDate       patch.Field[time.Time] `json:"due_date"`
	ScheduledDate patch.Field[time.Time] `json:"scheduled_date"`
	ProjectID     patch.Field[uuid.UUID] `json:"project_id"`
	Recurrence    patch.Field[string]    `json:"recurrence"`
}

// CreateProjectRequest defines the payload for creating a project.
type CreateProjectRequest struct {
	Title       string     `json:"title"       validate:"required,min=1"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"omitempty,oneof=planned active blocked done archived"`
	DueDate     *time.Time `json:"due_date"`
	Completion  int        `json:"completion"  validate:"gte=0,lte=100"`
}

// UpdateProjectRequest defines the payload for a partial project update.
type UpdateProjectRequest struct {
	Title       patch.Field[string]    `json:"title"`
	Description patch.Field[string]    `json:"description"`
	Status      patch.Field[string]    `json:"status"`
	DueDate     patch.Field[time.Time] `json:"due_date"`
	Completion  patch.Field[int]       `json:"completion"`
}

// CreateNoteRequest defines the payload for attaching a note to a task
// or project.
type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// ReorderRequest defines the payload for the board reorder endpoint:
// one moved task, the target lane, and the caller's full intended order
// for that lane.
type ReorderRequest struct {
	MovedTaskID    uuid.UUID   `json:"moved_task_id"    validate:"required"`
	ToStatus       string      `json:"to_status"        validate:"required,oneof=todo in_progress blocked parking_lot done"`
	OrderedTaskIDs []uuid.UUID `json:"ordered_task_ids" validate:"required,min=1"`
}

// ImportPreviewRequest defines the payload for the import preview
// endpoint. Payload carries the raw delimited export text.
type ImportPreviewRequest struct {
	Source  string `json:"source"  validate:"required"`
	Payload string `json:"payload" validate:"required"`
}

// ImportCommitRequest defines the payload for the import commit
// endpoint: the rows from the preview with the user's confirmed action
// per row.
type ImportCommitRequest struct {
	Source string               `json:"source" validate:"required"`
	Rows   []importer.CommitRow `json:"rows"   validate:"required,min=1"`
}
