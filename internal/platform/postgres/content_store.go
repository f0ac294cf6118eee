package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresContentStore implements the store.ContentStore interface using
// a PostgreSQL database as the storage backend.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the
// ContentStore interface.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore
var _ store.ContentStore = (*PostgresContentStore)(nil)

// WithTx implements store.ContentStore.WithTx
func (s *PostgresContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &PostgresContentStore{db: tx, logger: s.logger}
}

// Create implements store.ContentStore.Create
func (s *PostgresContentStore) Create(ctx context.Context, entry *domain.ContentEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("content entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO content_entries (id, parent_type, parent_id, body, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ParentType,
		entry.ParentID,
		entry.Body,
		entry.Source,
		entry.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to create content entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("parent_type", string(entry.ParentType)),
			slog.String("parent_id", entry.ParentID.String()))
		return mapped
	}

	log.Debug("content entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("parent_type", string(entry.ParentType)))
	return nil
}

// ListByParent implements store.ContentStore.ListByParent
func (s *PostgresContentStore) ListByParent(
	ctx context.Context,
	parentType domain.ParentType,
	parentID uuid.UUID,
) ([]*domain.ContentEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parent_type, parent_id, body, source, created_at
		FROM content_entries
		WHERE parent_type = $1 AND parent_id = $2
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, parentType, parentID)
	if err != nil {
		log.Error("failed to query content entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.ContentEntry{}
	for rows.Next() {
		var entry domain.ContentEntry
		var pt string
		if err := rows.Scan(&entry.ID, &pt, &entry.ParentID, &entry.Body, &entry.Source, &entry.CreatedAt); err != nil {
			log.Error("failed to scan content entry row", slog.String("error", err.Error()))
			return nil, err
		}
		entry.ParentType = domain.ParentType(pt)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
