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

// taskColumns is the canonical select list shared by every task query.
const taskColumns = `id, title, details, status, priority, due_date, scheduled_date,
	completed_at, project_id, source, recurrence, lane_order, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, details, status, priority, due_date, scheduled_date,
			completed_at, project_id, source, recurrence, lane_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Details,
		task.Status,
		task.Priority,
		task.DueDate,
		task.ScheduledDate,
		task.CompletedAt,
		task.ProjectID,
		task.Source,
		task.Recurrence,
		task.LaneOrder,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("project_id", task.ProjectID.String()))
		return mapped
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.Int("lane_order", task.LaneOrder))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY status, lane_order ASC, updated_at DESC, id ASC`
	return s.queryTasks(ctx, query)
}

// ListByStatus implements store.TaskStore.ListByStatus
func (s *PostgresTaskStore) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = $1
		ORDER BY lane_order ASC, updated_at DESC, id ASC`
	return s.queryTasks(ctx, query, status)
}

// ListBySource implements store.TaskStore.ListBySource
func (s *PostgresTaskStore) ListBySource(ctx context.Context, source string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE source = $1
		ORDER BY created_at ASC, id ASC`
	return s.queryTasks(ctx, query, source)
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, details = $2, status = $3, priority = $4, due_date = $5,
			scheduled_date = $6, completed_at = $7, project_id = $8, source = $9,
			recurrence = $10, lane_order = $11, updated_at = $12
		WHERE id = $13
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Details,
		task.Status,
		task.Priority,
		task.DueDate,
		task.ScheduledDate,
		task.CompletedAt,
		task.ProjectID,
		task.Source,
		task.Recurrence,
		task.LaneOrder,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapped
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task updated", slog.String("task_id", task.ID.String()))
	return nil
}

// SetLanePlacement implements store.TaskStore.SetLanePlacement
func (s *PostgresTaskStore) SetLanePlacement(ctx context.Context, id uuid.UUID, status domain.TaskStatus, order int) error {
	query := `UPDATE tasks SET status = $1, lane_order = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, status, order, id)
	if err != nil {
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return mapped
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task deleted", slog.String("task_id", id.String()))
	return nil
}

// ReassignProject implements store.TaskStore.ReassignProject
func (s *PostgresTaskStore) ReassignProject(ctx context.Context, fromProject, toProject uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE tasks SET project_id = $1, updated_at = $2 WHERE project_id = $3`
	result, err := s.db.ExecContext(ctx, query, toProject, time.Now().UTC(), fromProject)
	if err != nil {
		mapped := MapError(err)
		log.Error("failed to reassign tasks",
			slog.String("error", err.Error()),
			slog.String("from_project", fromProject.String()),
			slog.String("to_project", toProject.String()))
		return mapped
	}

	if moved, err := result.RowsAffected(); err == nil && moved > 0 {
		log.Info("tasks reassigned to fallback project",
			slog.Int64("count", moved),
			slog.String("from_project", fromProject.String()),
			slog.String("to_project", toProject.String()))
	}
	return nil
}

// CountByStatus implements store.TaskStore.CountByStatus
func (s *PostgresTaskStore) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// queryTasks runs a multi-row task query and scans the results.
func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority, recurrence string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Details,
		&status,
		&priority,
		&task.DueDate,
		&task.ScheduledDate,
		&task.CompletedAt,
		&task.ProjectID,
		&task.Source,
		&recurrence,
		&task.LaneOrder,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.Recurrence = domain.Recurrence(recurrence)
	return &task, nil
}
