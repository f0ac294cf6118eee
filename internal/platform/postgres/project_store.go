package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

const projectColumns = `id, title, description, status, due_date, completion, source,
	inbox, created_at, updated_at`

// PostgresProjectStore implements the store.ProjectStore interface using
// a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (id, title, description, status, due_date, completion,
			source, inbox, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.Title,
		project.Description,
		project.Status,
		project.DueDate,
		project.Completion,
		project.Source,
		project.Inbox,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return mapped
	}

	log.Debug("project created", slog.String("project_id", project.ID.String()))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, MapError(err)
	}
	return project, nil
}

// List implements store.ProjectStore.List
func (s *PostgresProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at ASC, id ASC`
	return s.queryProjects(ctx, query)
}

// ListBySource implements store.ProjectStore.ListBySource
func (s *PostgresProjectStore) ListBySource(ctx context.Context, source string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE source = $1
		ORDER BY created_at ASC, id ASC`
	return s.queryProjects(ctx, query, source)
}

// Exists implements store.ProjectStore.Exists
func (s *PostgresProjectStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Update implements store.ProjectStore.Update
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during update",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		UPDATE projects
		SET title = $1, description = $2, status = $3, due_date = $4, completion = $5,
			source = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		project.Title,
		project.Description,
		project.Status,
		project.DueDate,
		project.Completion,
		project.Source,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return mapped
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrProjectNotFound
	}

	log.Debug("project updated", slog.String("project_id", project.ID.String()))
	return nil
}

// Delete implements store.ProjectStore.Delete
func (s *PostgresProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The inbox guard lives in SQL as well as the service layer: the
	// singleton must survive even a buggy caller.
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND inbox = FALSE`, id)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return mapped
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrProjectNotFound
	}

	log.Debug("project deleted", slog.String("project_id", id.String()))
	return nil
}

// GetInbox implements store.ProjectStore.GetInbox
func (s *PostgresProjectStore) GetInbox(ctx context.Context) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE inbox = TRUE`

	project, err := scanProject(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInboxMissing
		}
		return nil, MapError(err)
	}
	return project, nil
}

// EnsureInbox implements store.ProjectStore.EnsureInbox
func (s *PostgresProjectStore) EnsureInbox(ctx context.Context) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.GetInbox(ctx)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, store.ErrInboxMissing) {
		return nil, err
	}

	now := time.Now().UTC()
	inbox := &domain.Project{
		ID:        uuid.New(),
		Title:     domain.InboxTitle,
		Status:    domain.ProjectStatusActive,
		Source:    domain.SourceManual,
		Inbox:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Create(ctx, inbox); err != nil {
		// A concurrent EnsureInbox may have won the race on the partial
		// unique index; re-read before giving up.
		if errors.Is(err, store.ErrDuplicate) {
			return s.GetInbox(ctx)
		}
		return nil, err
	}

	log.Info("inbox project created", slog.String("project_id", inbox.ID.String()))
	return inbox, nil
}

func (s *PostgresProjectStore) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query projects", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	projects := []*domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			log.Error("failed to scan project row", slog.String("error", err.Error()))
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var status string

	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&status,
		&project.DueDate,
		&project.Completion,
		&project.Source,
		&project.Inbox,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Status = domain.ProjectStatus(status)
	return &project, nil
}
