package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/patch"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// CreateProjectInput carries the caller-supplied fields for a new
// project. Zero values fall back to defaults: status planned, zero
// completion.
type CreateProjectInput struct {
	Title       string
	Description string
	Status      domain.ProjectStatus
	DueDate     *time.Time
	Completion  int
}

// ProjectPatch is a partial update of a project. Unset fields are left
// alone; a null DueDate clears the date.
type ProjectPatch struct {
	Title       patch.Field[string]
	Description patch.Field[string]
	Status      patch.Field[domain.ProjectStatus]
	DueDate     patch.Field[time.Time]
	Completion  patch.Field[int]
}

// ProjectService performs project-related operations, including notes
// attached to projects and the Inbox fallback semantics.
type ProjectService interface {
	// CreateProject stores a new project.
	CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error)

	// GetProject retrieves one project.
	// Returns store.ErrProjectNotFound if it does not exist.
	GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListProjects retrieves all projects ordered by creation time.
	ListProjects(ctx context.Context) ([]*domain.Project, error)

	// UpdateProject applies a partial update.
	UpdateProject(ctx context.Context, id uuid.UUID, p ProjectPatch) (*domain.Project, error)

	// DeleteProject removes a project, reassigning its tasks to the
	// Inbox inside the same transaction.
	// Returns ErrInboxProtected for the Inbox project itself.
	DeleteProject(ctx context.Context, id uuid.UUID) error

	// AddNote appends a note to a task or a project.
	AddNote(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID, body string) (*domain.ContentEntry, error)

	// ListNotes retrieves all notes attached to one parent, oldest first.
	ListNotes(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.ContentEntry, error)
}

// projectService implements ProjectService.
type projectService struct {
	projects   store.ProjectStore
	tasks      store.TaskStore
	content    store.ContentStore
	activity   store.ActivityStore
	transactor store.Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projects store.ProjectStore,
	tasks store.TaskStore,
	content store.ContentStore,
	activity store.ActivityStore,
	transactor store.Transactor,
	logger *slog.Logger,
) (ProjectService, error) {
	if projects == nil {
		return nil, domain.NewValidationError("projects", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if content == nil {
		return nil, domain.NewValidationError("content", "cannot be nil", domain.ErrValidation)
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

	return &projectService{
		projects:   projects,
		tasks:      tasks,
		content:    content,
		activity:   activity,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "project_service")),
		now:        time.Now,
	}, nil
}

// CreateProject implements ProjectService.CreateProject
func (s *projectService) CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := domain.NewProject(input.Title)
	if err != nil {
		return nil, err
	}
	project.Description = input.Description
	if input.Status != "" {
		project.Status = input.Status
	}
	project.DueDate = input.DueDate
	project.Completion = domain.ClampCompletion(input.Completion)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	err = s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.projects.WithTx(tx).Create(ctx, project); err != nil {
			return err
		}
		return s.activity.WithTx(tx).Record(ctx, domain.NewActivityEntry("project", project.ID, "create", nil))
	})
	if err != nil {
		return nil, err
	}

	log.Info("project created", slog.String("project_id", project.ID.String()))
	return project, nil
}

// GetProject implements ProjectService.GetProject
func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// ListProjects implements ProjectService.ListProjects
func (s *projectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

// UpdateProject implements ProjectService.UpdateProject
func (s *projectService) UpdateProject(ctx context.Context, id uuid.UUID, p ProjectPatch) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p.Title.Set && !p.Title.Valid {
		return nil, domain.NewValidationError("title", "cannot be null", domain.ErrValidation)
	}
	if p.Status.Set && !p.Status.Valid {
		return nil, domain.NewValidationError("status", "cannot be null", domain.ErrValidation)
	}
	if p.Completion.Set && !p.Completion.Valid {
		return nil, domain.NewValidationError("completion", "cannot be null", domain.ErrValidation)
	}

	var updated *domain.Project
	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txProjects := s.projects.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		project, err := txProjects.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if p.Title.Set {
			project.Title = p.Title.Value
		}
		if p.Description.Set {
			project.Description = p.Description.Value
		}
		if p.Status.Set {
			project.Status = p.Status.Value
		}
		if p.DueDate.Set {
			project.DueDate = nil
			if p.DueDate.Valid {
				due := p.DueDate.Value
				project.DueDate = &due
			}
		}
		if p.Completion.Set {
			project.Completion = domain.ClampCompletion(p.Completion.Value)
		}

		project.UpdatedAt = s.now().UTC()
		if err := project.Validate(); err != nil {
			return err
		}
		if err := txProjects.Update(ctx, project); err != nil {
			return err
		}
		if err := txActivity.Record(ctx, domain.NewActivityEntry("project", project.ID, "update", nil)); err != nil {
			return err
		}

		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("project updated", slog.String("project_id", id.String()))
	return updated, nil
}

// DeleteProject implements ProjectService.DeleteProject
func (s *projectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txProjects := s.projects.WithTx(tx)
		txTasks := s.tasks.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		project, err := txProjects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if project.Inbox {
			return ErrInboxProtected
		}

		inbox, err := txProjects.EnsureInbox(ctx)
		if err != nil {
			return err
		}
		if err := txTasks.ReassignProject(ctx, project.ID, inbox.ID); err != nil {
			return err
		}
		if err := txProjects.Delete(ctx, id); err != nil {
			return err
		}

		detail, _ := json.Marshal(map[string]string{
			"reassigned_to": inbox.ID.String(),
		})
		return txActivity.Record(ctx, domain.NewActivityEntry("project", id, "delete", detail))
	})
	if err != nil {
		return err
	}

	log.Info("project deleted, tasks reassigned to inbox",
		slog.String("project_id", id.String()))
	return nil
}

// AddNote implements ProjectService.AddNote
func (s *projectService) AddNote(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID, body string) (*domain.ContentEntry, error) {
	if err := s.checkParent(ctx, parentType, parentID); err != nil {
		return nil, err
	}

	entry, err := domain.NewContentEntry(parentType, parentID, body, domain.SourceManual)
	if err != nil {
		return nil, err
	}
	if err := s.content.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListNotes implements ProjectService.ListNotes
func (s *projectService) ListNotes(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.ContentEntry, error) {
	if err := s.checkParent(ctx, parentType, parentID); err != nil {
		return nil, err
	}
	return s.content.ListByParent(ctx, parentType, parentID)
}

// checkParent verifies that a note's parent entity exists.
func (s *projectService) checkParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) error {
	switch parentType {
	case domain.ParentTypeTask:
		if _, err := s.tasks.GetByID(ctx, parentID); err != nil {
			return err
		}
	case domain.ParentTypeProject:
		if _, err := s.projects.GetByID(ctx, parentID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidParentType, parentType)
	}
	return nil
}
