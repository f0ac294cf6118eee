package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project to the store.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// List retrieves all projects ordered by creation time.
	List(ctx context.Context) ([]*domain.Project, error)

	// ListBySource retrieves all projects stamped with the given
	// provenance tag, for duplicate detection during import preview.
	ListBySource(ctx context.Context, source string) ([]*domain.Project, error)

	// Exists reports whether a project with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Update saves changes to an existing project.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project from the store by its ID.
	// Returns ErrProjectNotFound if the project does not exist. Callers
	// must reassign the project's tasks to the Inbox first, inside the
	// same transaction; the Inbox itself is never deletable.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetInbox retrieves the reserved Inbox project.
	// Returns ErrInboxMissing if it has not been created yet.
	GetInbox(ctx context.Context) (*domain.Project, error)

	// EnsureInbox retrieves the Inbox project, creating it if missing.
	// The Inbox is a singleton; concurrent creation races are resolved by
	// a partial unique index.
	EnsureInbox(ctx context.Context) (*domain.Project, error)

	// WithTx returns a new ProjectStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
