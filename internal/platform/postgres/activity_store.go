package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of
// the ActivityStore interface.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{db: tx, logger: s.logger}
}

// Record implements store.ActivityStore.Record
func (s *PostgresActivityStore) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO activity_entries (id, entity_type, entity_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var detail any
	if len(entry.Detail) > 0 {
		detail = []byte(entry.Detail)
	}

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		detail,
		entry.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to record activity",
			slog.String("error", err.Error()),
			slog.String("entity_type", entry.EntityType),
			slog.String("action", entry.Action))
		return mapped
	}

	return nil
}
