package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/patch"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Zero values fall back to defaults: status todo, priority medium,
// recurrence none, and the Inbox project when ProjectID is nil.
type CreateTaskInput struct {
	Title         string
	Details       string
	Status        domain.TaskStatus
	Priority      domain.TaskPriority
	DueDate       *time.Time
	ScheduledDate *time.Time
	ProjectID     *uuid.UUID
	Recurrence    domain.Recurrence
}

// TaskPatch is a partial update of a task. Unset fields are left alone;
// a null DueDate or ScheduledDate clears the date, and a null ProjectID
// moves the task back to the Inbox.
type TaskPatch struct {
	Title         patch.Field[string]
	Details       patch.Field[string]
	Status        patch.Field[domain.TaskStatus]
	Priority      patch.Field[domain.TaskPriority]
	DueDate       patch.Field[time.Time]
	ScheduledDate patch.Field[time.Time]
	ProjectID     patch.Field[uuid.UUID]
	Recurrence    patch.Field[domain.Recurrence]
}

// TaskService performs task-related operations and keeps every lane's
// dense ordering intact across creates, updates, and deletes.
type TaskService interface {
	// CreateTask stores a new task at the tail of its lane.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves one task.
	// Returns store.ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves all tasks in board order.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// ListTasksByStatus retrieves one lane's members in lane order.
	ListTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)

	// UpdateTask applies a partial update. A status change moves the
	// task to the tail of the new lane, repairs the old lane, maintains
	// the completion timestamp, and spawns the recurrence successor
	// when the task crosses into done.
	UpdateTask(ctx context.Context, id uuid.UUID, p TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task and closes the gap it leaves in its lane.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// taskService implements TaskService.
type taskService struct {
	tasks      store.TaskStore
	projects   store.ProjectStore
	activity   store.ActivityStore
	transactor store.Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	tasks store.TaskStore,
	projects store.ProjectStore,
	activity store.ActivityStore,
	transactor store.Transactor,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if projects == nil {
		return nil, domain.NewValidationError("projects", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskService{
		tasks:      tasks,
		projects:   projects,
		activity:   activity,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "task_service")),
		now:        time.Now,
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskService) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.Task
	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txProjects := s.projects.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		projectID, err := resolveProject(ctx, txProjects, input.ProjectID)
		if err != nil {
			return err
		}

		task, err := domain.NewTask(projectID, input.Title)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		task.Details = input.Details
		if input.Status != "" {
			task.Status = input.Status
		}
		if input.Priority != "" {
			task.Priority = input.Priority
		}
		if input.Recurrence != "" {
			task.Recurrence = input.Recurrence
		}
		task.DueDate = input.DueDate
		task.ScheduledDate = input.ScheduledDate
		if task.Status.IsTerminal() {
			completed := now
			task.CompletedAt = &completed
		}
		if err := task.Validate(); err != nil {
			return err
		}

		tail, err := txTasks.CountByStatus(ctx, task.Status)
		if err != nil {
			return err
		}
		task.LaneOrder = tail

		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}
		if err := txActivity.Record(ctx, domain.NewActivityEntry("task", task.ID, "create", nil)); err != nil {
			return err
		}

		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("status", string(created.Status)))
	return created, nil
}

// GetTask implements TaskService.GetTask
func (s *taskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListTasks implements TaskService.ListTasks
func (s *taskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.List(ctx)
}

// ListTasksByStatus implements TaskService.ListTasksByStatus
func (s *taskService) ListTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "is not a known lane", domain.ErrInvalidStatus)
	}
	return s.tasks.ListByStatus(ctx, status)
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskService) UpdateTask(ctx context.Context, id uuid.UUID, p TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p.Title.Set && !p.Title.Valid {
		return nil, domain.NewValidationError("title", "cannot be null", domain.ErrValidation)
	}
	if p.Status.Set && !p.Status.Valid {
		return nil, domain.NewValidationError("status", "cannot be null", domain.ErrValidation)
	}
	if p.Priority.Set && !p.Priority.Valid {
		return nil, domain.NewValidationError("priority", "cannot be null", domain.ErrValidation)
	}
	if p.Recurrence.Set && !p.Recurrence.Valid {
		return nil, domain.NewValidationError("recurrence", "cannot be null", domain.ErrValidation)
	}

	var updated *domain.Task
	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txProjects := s.projects.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		prevStatus := task.Status
		now := s.now().UTC()

		if p.Title.Set {
			task.Title = p.Title.Value
		}
		if p.Details.Set {
			task.Details = p.Details.Value
		}
		if p.Priority.Set {
			task.Priority = p.Priority.Value
		}
		if p.Recurrence.Set {
			task.Recurrence = p.Recurrence.Value
		}
		if p.DueDate.Set {
			task.DueDate = nil
			if p.DueDate.Valid {
				due := p.DueDate.Value
				task.DueDate = &due
			}
		}
		if p.ScheduledDate.Set {
			task.ScheduledDate = nil
			if p.ScheduledDate.Valid {
				scheduled := p.ScheduledDate.Value
				task.ScheduledDate = &scheduled
			}
		}
		if p.ProjectID.Set {
			var requested *uuid.UUID
			if p.ProjectID.Valid {
				requested = &p.ProjectID.Value
			}
			projectID, err := resolveProject(ctx, txProjects, requested)
			if err != nil {
				return err
			}
			task.ProjectID = projectID
		}

		crossLane := p.Status.Set && p.Status.Value != prevStatus
		if crossLane {
			task.Status = p.Status.Value
			switch {
			case !prevStatus.IsTerminal() && task.Status.IsTerminal():
				completed := now
				task.CompletedAt = &completed
			case prevStatus.IsTerminal() && !task.Status.IsTerminal():
				task.CompletedAt = nil
			}
			// A status patch lands the task at the tail of its new lane.
			tail, err := txTasks.CountByStatus(ctx, task.Status)
			if err != nil {
				return err
			}
			task.LaneOrder = tail
		}

		task.UpdatedAt = now
		if err := task.Validate(); err != nil {
			return err
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		if crossLane {
			if err := repairLane(ctx, txTasks, prevStatus); err != nil {
				return err
			}
			detail, _ := json.Marshal(map[string]string{
				"from": string(prevStatus),
				"to":   string(task.Status),
			})
			if err := txActivity.Record(ctx, domain.NewActivityEntry("task", task.ID, "status_change", detail)); err != nil {
				return err
			}
			if !prevStatus.IsTerminal() && task.Status.IsTerminal() {
				if _, err := spawnSuccessor(ctx, txTasks, task, now); err != nil {
					return err
				}
			}
		} else {
			if err := txActivity.Record(ctx, domain.NewActivityEntry("task", task.ID, "update", nil)); err != nil {
				return err
			}
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated", slog.String("task_id", id.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txTasks.Delete(ctx, id); err != nil {
			return err
		}
		// Close the gap the deletion left in the lane.
		if err := repairLane(ctx, txTasks, task.Status); err != nil {
			return err
		}
		return txActivity.Record(ctx, domain.NewActivityEntry("task", id, "delete", nil))
	})
	if err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// resolveProject validates the owning project for a task. A nil request
// falls back to the Inbox, creating it if it does not exist yet.
func resolveProject(ctx context.Context, projects store.ProjectStore, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil {
		inbox, err := projects.EnsureInbox(ctx)
		if err != nil {
			return uuid.Nil, err
		}
		return inbox.ID, nil
	}

	exists, err := projects.Exists(ctx, *requested)
	if err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, store.ErrProjectNotFound
	}
	return *requested, nil
}
