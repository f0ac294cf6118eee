package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning project does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves all tasks, ordered by status then by the lane
	// tie-break chain (lane_order asc, updated_at desc, id asc).
	List(ctx context.Context) ([]*domain.Task, error)

	// ListByStatus retrieves one lane's members in tie-break order.
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)

	// ListBySource retrieves all tasks stamped with the given provenance
	// tag. Used to scope duplicate detection during import preview.
	ListBySource(ctx context.Context, source string) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// SetLanePlacement writes a task's status and lane order without
	// touching updated_at, so dense reindexing does not perturb the
	// tie-break chain.
	// Returns ErrTaskNotFound if the task does not exist.
	SetLanePlacement(ctx context.Context, id uuid.UUID, status domain.TaskStatus, order int) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist. The caller is
	// responsible for repairing the task's former lane afterwards.
	Delete(ctx context.Context, id uuid.UUID) error

	// ReassignProject moves every task of one project to another.
	// Used when a project is deleted: its tasks fall back to the Inbox.
	ReassignProject(ctx context.Context, fromProject, toProject uuid.UUID) error

	// CountByStatus returns the number of tasks in one lane. New tasks
	// are appended at order == lane size.
	CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
