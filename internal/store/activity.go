package store

import (
	"context"
	"database/sql"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// ActivityStore defines the interface for audit record persistence.
// Records are written as side effects of reorders and import commits,
// inside the same transaction as the mutation they describe.
type ActivityStore interface {
	// Record appends an audit entry.
	Record(ctx context.Context, entry *domain.ActivityEntry) error

	// WithTx returns a new ActivityStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
