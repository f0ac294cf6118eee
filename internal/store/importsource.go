package store

import (
	"context"
	"database/sql"
	"time"
)

// ImportSourceStat is the per-source running import counter.
type ImportSourceStat struct {
	Source         string     `json:"source"`
	ImportCount    int        `json:"import_count"`
	LastImportedAt *time.Time `json:"last_imported_at"`
}

// ImportSourceStore tracks provenance counters: how many commits each
// external source has contributed and when the last one landed.
type ImportSourceStore interface {
	// Bump increments the source's import counter and stamps the time.
	// Called once per commit that created or updated anything.
	Bump(ctx context.Context, source string, at time.Time) error

	// Get retrieves one source's counter. Returns ErrNotFound if the
	// source has never been bumped.
	Get(ctx context.Context, source string) (*ImportSourceStat, error)

	// WithTx returns a new ImportSourceStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) ImportSourceStore
}
