package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresImportSourceStore implements the store.ImportSourceStore
// interface using a PostgreSQL database as the storage backend.
type PostgresImportSourceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresImportSourceStore creates a new PostgreSQL implementation
// of the ImportSourceStore interface.
func NewPostgresImportSourceStore(db store.DBTX, logger *slog.Logger) *PostgresImportSourceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresImportSourceStore{
		db:     db,
		logger: logger.With(slog.String("component", "import_source_store")),
	}
}

// Ensure PostgresImportSourceStore implements store.ImportSourceStore
var _ store.ImportSourceStore = (*PostgresImportSourceStore)(nil)

// WithTx implements store.ImportSourceStore.WithTx
func (s *PostgresImportSourceStore) WithTx(tx *sql.Tx) store.ImportSourceStore {
	return &PostgresImportSourceStore{db: tx, logger: s.logger}
}

// Bump implements store.ImportSourceStore.Bump
func (s *PostgresImportSourceStore) Bump(ctx context.Context, source string, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO import_sources (source, import_count, last_imported_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (source)
		DO UPDATE SET import_count = import_sources.import_count + 1, last_imported_at = $2
	`
	if _, err := s.db.ExecContext(ctx, query, source, at); err != nil {
		mapped := MapError(err)
		log.Error("failed to bump import counter",
			slog.String("error", err.Error()),
			slog.String("source", source))
		return mapped
	}

	log.Debug("import counter bumped", slog.String("source", source))
	return nil
}

// Get implements store.ImportSourceStore.Get
func (s *PostgresImportSourceStore) Get(ctx context.Context, source string) (*store.ImportSourceStat, error) {
	query := `SELECT source, import_count, last_imported_at FROM import_sources WHERE source = $1`

	var stat store.ImportSourceStat
	err := s.db.QueryRowContext(ctx, query, source).Scan(
		&stat.Source,
		&stat.ImportCount,
		&stat.LastImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, MapError(err)
	}
	return &stat, nil
}
