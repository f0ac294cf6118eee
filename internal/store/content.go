package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// ContentStore defines the interface for content entry persistence.
// Entries are append-only notes attached to a task or a project.
type ContentStore interface {
	// Create saves a new content entry.
	// Returns ErrInvalidEntity if the parent does not exist.
	Create(ctx context.Context, entry *domain.ContentEntry) error

	// ListByParent retrieves all entries attached to one parent, oldest
	// first.
	ListByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.ContentEntry, error)

	// WithTx returns a new ContentStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ContentStore
}
