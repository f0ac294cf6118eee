package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/importer"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// ImportService runs the two-phase import round trip: Preview parses
// and classifies a raw export without touching the store, Commit applies
// the caller-confirmed rows in one transaction.
type ImportService interface {
	// Preview parses a raw delimited export and classifies every row
	// against the existing records of the source's entity kind. It is
	// read-only.
	Preview(ctx context.Context, source importer.Source, payload string) (*importer.Preview, error)

	// Commit applies confirmed rows atomically. Rows marked skip are
	// counted but untouched; either every non-skip row lands or none
	// do. The source's import counter is bumped only when the commit
	// changed something.
	Commit(ctx context.Context, source importer.Source, rows []importer.CommitRow) (*importer.CommitResult, error)

	// SourceStats retrieves the per-source import counters for every
	// source that has committed at least once.
	SourceStats(ctx context.Context) ([]*store.ImportSourceStat, error)
}

// importService implements ImportService.
type importService struct {
	tasks      store.TaskStore
	projects   store.ProjectStore
	content    store.ContentStore
	activity   store.ActivityStore
	sources    store.ImportSourceStore
	transactor store.Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// NewImportService creates a new ImportService.
func NewImportService(
	tasks store.TaskStore,
	projects store.ProjectStore,
	content store.ContentStore,
	activity store.ActivityStore,
	sources store.ImportSourceStore,
	transactor store.Transactor,
	logger *slog.Logger,
) (ImportService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if projects == nil {
		return nil, domain.NewValidationError("projects", "cannot be nil", domain.ErrValidation)
	}
	if content == nil {
		return nil, domain.NewValidationError("content", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if sources == nil {
		return nil, domain.NewValidationError("sources", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &importService{
		tasks:      tasks,
		projects:   projects,
		content:    content,
		activity:   activity,
		sources:    sources,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "import_service")),
		now:        time.Now,
	}, nil
}

// Preview implements ImportService.Preview
func (s *importService) Preview(ctx context.Context, source importer.Source, payload string) (*importer.Preview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImportSource, source)
	}

	batch := importer.Parse(payload)
	candidates, err := s.candidatePool(ctx, source)
	if err != nil {
		return nil, err
	}

	preview, err := importer.Classify(source, batch, candidates)
	if err != nil {
		return nil, err
	}

	log.Info("import preview classified",
		slog.String("source", string(source)),
		slog.Int("valid_rows", preview.ValidRows),
		slog.Int("invalid_rows", preview.InvalidRows))
	return &preview, nil
}

// Commit implements ImportService.Commit
func (s *importService) Commit(ctx context.Context, source importer.Source, rows []importer.CommitRow) (*importer.CommitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImportSource, source)
	}
	kind, err := source.EntityKind()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImportSource, source)
	}

	var result importer.CommitResult
	err = s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txProjects := s.projects.WithTx(tx)
		txContent := s.content.WithTx(tx)
		txActivity := s.activity.WithTx(tx)
		txSources := s.sources.WithTx(tx)

		now := s.now().UTC()
		for _, row := range rows {
			if row.Action == importer.ActionSkip {
				result.Skipped++
				continue
			}
			// A blank title can never produce a task or project; the
			// row is counted and the rest of the batch proceeds. Note
			// rows may still fall back to their body.
			if source != importer.SourceAppleNotes &&
				strings.TrimSpace(row.Values[importer.FieldTitle]) == "" {
				result.Skipped++
				continue
			}

			switch {
			case source == importer.SourceAppleNotes:
				// Note-producing rows always create, even when the
				// preview surfaced a duplicate. A row that cannot
				// produce a note is skipped, never aborts the batch.
				if err := s.commitNote(ctx, txTasks, txProjects, txContent, source, row); err != nil {
					result.Skipped++
					log.Warn("import note row skipped",
						slog.String("source", string(source)),
						slog.String("error", err.Error()))
					continue
				}
				result.CreatedNotes++
			case kind == importer.EntityKindTask:
				created, err := s.commitTask(ctx, txTasks, txProjects, source, row, now)
				if err != nil {
					return err
				}
				if created {
					result.CreatedTasks++
				} else {
					result.UpdatedTasks++
				}
			default:
				created, err := s.commitProject(ctx, txProjects, source, row, now)
				if err != nil {
					return err
				}
				if created {
					result.CreatedProjects++
				} else {
					result.UpdatedProjects++
				}
			}
		}

		if !result.Changed() {
			return nil
		}
		if err := txSources.Bump(ctx, string(source), now); err != nil {
			return err
		}
		detail, _ := json.Marshal(result)
		return txActivity.Record(ctx, domain.NewActivityEntry("import", uuid.New(), "commit", detail))
	})
	if err != nil {
		return nil, err
	}

	log.Info("import committed",
		slog.String("source", string(source)),
		slog.Int("created_tasks", result.CreatedTasks),
		slog.Int("updated_tasks", result.UpdatedTasks),
		slog.Int("created_projects", result.CreatedProjects),
		slog.Int("updated_projects", result.UpdatedProjects),
		slog.Int("created_notes", result.CreatedNotes),
		slog.Int("skipped", result.Skipped))
	return &result, nil
}

// SourceStats implements ImportService.SourceStats
func (s *importService) SourceStats(ctx context.Context) ([]*store.ImportSourceStat, error) {
	stats := make([]*store.ImportSourceStat, 0, len(importer.Sources))
	for _, src := range importer.Sources {
		stat, err := s.sources.Get(ctx, string(src))
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// candidatePool loads the existing entities a preview's rows are matched
// against: the source's entity kind, scoped to the source's provenance
// tag.
func (s *importService) candidatePool(ctx context.Context, source importer.Source) ([]importer.Candidate, error) {
	kind, err := source.EntityKind()
	if err != nil {
		return nil, err
	}

	if kind == importer.EntityKindTask {
		tasks, err := s.tasks.ListBySource(ctx, string(source))
		if err != nil {
			return nil, err
		}
		candidates := make([]importer.Candidate, 0, len(tasks))
		for _, t := range tasks {
			candidates = append(candidates, importer.Candidate{ID: t.ID, Title: t.Title})
		}
		return candidates, nil
	}

	projects, err := s.projects.ListBySource(ctx, string(source))
	if err != nil {
		return nil, err
	}
	candidates := make([]importer.Candidate, 0, len(projects))
	for _, p := range projects {
		candidates = append(candidates, importer.Candidate{ID: p.ID, Title: p.Title})
	}
	return candidates, nil
}

// commitTask applies one task-producing row. Returns true when a new
// task was created, false when an existing one was updated.
func (s *importService) commitTask(
	ctx context.Context,
	tasks store.TaskStore,
	projects store.ProjectStore,
	source importer.Source,
	row importer.CommitRow,
	now time.Time,
) (bool, error) {
	title := strings.TrimSpace(row.Values[importer.FieldTitle])
	if title == "" {
		return false, domain.ErrTaskTitleEmpty
	}

	if row.Action == importer.ActionUpdate && row.DuplicateMatch != nil {
		task, err := tasks.GetByID(ctx, row.DuplicateMatch.ID)
		switch {
		case err == nil:
			prevStatus := task.Status
			applyTaskRow(task, row.Values)
			if task.Status != prevStatus {
				switch {
				case !prevStatus.IsTerminal() && task.Status.IsTerminal():
					completed := now
					task.CompletedAt = &completed
				case prevStatus.IsTerminal() && !task.Status.IsTerminal():
					task.CompletedAt = nil
				}
				tail, err := tasks.CountByStatus(ctx, task.Status)
				if err != nil {
					return false, err
				}
				task.LaneOrder = tail
			}
			task.UpdatedAt = now
			if err := tasks.Update(ctx, task); err != nil {
				return false, err
			}
			if task.Status != prevStatus {
				if err := repairLane(ctx, tasks, prevStatus); err != nil {
					return false, err
				}
			}
			return false, nil
		case store.IsNotFoundError(err):
			// The matched target vanished between preview and commit;
			// fall through to create.
		default:
			return false, err
		}
	}

	projectID, err := s.resolveRowProject(ctx, projects, row.Values)
	if err != nil {
		return false, err
	}
	task, err := domain.NewTask(projectID, title)
	if err != nil {
		return false, err
	}
	task.Source = string(source)
	applyTaskRow(task, row.Values)
	task.CreatedAt = now
	task.UpdatedAt = now

	tail, err := tasks.CountByStatus(ctx, task.Status)
	if err != nil {
		return false, err
	}
	task.LaneOrder = tail

	return true, tasks.Create(ctx, task)
}

// commitProject applies one project-producing row. Returns true when a
// new project was created, false when an existing one was updated.
func (s *importService) commitProject(
	ctx context.Context,
	projects store.ProjectStore,
	source importer.Source,
	row importer.CommitRow,
	now time.Time,
) (bool, error) {
	title := strings.TrimSpace(row.Values[importer.FieldTitle])
	if title == "" {
		return false, domain.ErrProjectTitleEmpty
	}

	if row.Action == importer.ActionUpdate && row.DuplicateMatch != nil {
		project, err := projects.GetByID(ctx, row.DuplicateMatch.ID)
		switch {
		case err == nil:
			applyProjectRow(project, row.Values)
			project.UpdatedAt = now
			if err := projects.Update(ctx, project); err != nil {
				return false, err
			}
			return false, nil
		case store.IsNotFoundError(err):
			// Vanished target; fall through to create.
		default:
			return false, err
		}
	}

	project, err := domain.NewProject(title)
	if err != nil {
		return false, err
	}
	project.Source = string(source)
	applyProjectRow(project, row.Values)
	project.CreatedAt = now
	project.UpdatedAt = now

	return true, projects.Create(ctx, project)
}

// commitNote creates a content entry from a note-producing row. The note
// attaches to an explicitly referenced task, else the task the preview
// matched, else an explicitly referenced project, else the Inbox.
func (s *importService) commitNote(
	ctx context.Context,
	tasks store.TaskStore,
	projects store.ProjectStore,
	content store.ContentStore,
	source importer.Source,
	row importer.CommitRow,
) error {
	title := strings.TrimSpace(row.Values[importer.FieldTitle])
	body := strings.TrimSpace(row.Values[importer.FieldBody])
	if body == "" {
		body = strings.TrimSpace(row.Values[importer.FieldNotes])
	}
	if body == "" {
		body = title
	}

	parentType := domain.ParentTypeProject
	var parentID uuid.UUID
	if raw := strings.TrimSpace(row.Values[importer.FieldTaskID]); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			if _, err := tasks.GetByID(ctx, id); err == nil {
				parentType = domain.ParentTypeTask
				parentID = id
			}
		}
	}
	if parentID == uuid.Nil && row.DuplicateMatch != nil {
		if _, err := tasks.GetByID(ctx, row.DuplicateMatch.ID); err == nil {
			parentType = domain.ParentTypeTask
			parentID = row.DuplicateMatch.ID
		}
	}
	if parentID == uuid.Nil {
		if raw := strings.TrimSpace(row.Values[importer.FieldProjectID]); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				exists, err := projects.Exists(ctx, id)
				if err == nil && exists {
					parentID = id
				}
			}
		}
	}
	if parentID == uuid.Nil {
		inbox, err := projects.EnsureInbox(ctx)
		if err != nil {
			return err
		}
		parentID = inbox.ID
	}

	entry, err := domain.NewContentEntry(parentType, parentID, body, string(source))
	if err != nil {
		return err
	}
	return content.Create(ctx, entry)
}

// resolveRowProject picks the owning project for an imported task: the
// row's explicit project_id when it names an existing project, else the
// Inbox.
func (s *importService) resolveRowProject(
	ctx context.Context,
	projects store.ProjectStore,
	values map[string]string,
) (uuid.UUID, error) {
	if raw := strings.TrimSpace(values[importer.FieldProjectID]); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			exists, err := projects.Exists(ctx, id)
			if err != nil {
				return uuid.Nil, err
			}
			if exists {
				return id, nil
			}
		}
	}

	inbox, err := projects.EnsureInbox(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return inbox.ID, nil
}

// applyTaskRow copies recognized row fields onto a task. Unrecognized
// keys were already dropped by the parser; absent keys leave the task's
// current value alone.
func applyTaskRow(task *domain.Task, values map[string]string) {
	if title := strings.TrimSpace(values[importer.FieldTitle]); title != "" {
		task.Title = title
	}
	if notes, ok := values[importer.FieldNotes]; ok && strings.TrimSpace(notes) != "" {
		task.Details = strings.TrimSpace(notes)
	}
	if raw, ok := values[importer.FieldStatus]; ok && strings.TrimSpace(raw) != "" {
		task.Status = domain.NormalizeTaskStatus(raw)
	}
	if raw, ok := values[importer.FieldPriority]; ok && strings.TrimSpace(raw) != "" {
		task.Priority = domain.NormalizeTaskPriority(raw)
	}
	if raw, ok := values[importer.FieldDueDate]; ok {
		if due := parseImportDate(raw); due != nil {
			task.DueDate = due
		}
	}
}

// applyProjectRow copies recognized row fields onto a project.
func applyProjectRow(project *domain.Project, values map[string]string) {
	if title := strings.TrimSpace(values[importer.FieldTitle]); title != "" {
		project.Title = title
	}
	if notes, ok := values[importer.FieldNotes]; ok && strings.TrimSpace(notes) != "" {
		project.Description = strings.TrimSpace(notes)
	}
	if raw, ok := values[importer.FieldStatus]; ok && strings.TrimSpace(raw) != "" {
		project.Status = domain.NormalizeProjectStatus(raw)
	}
	if raw, ok := values[importer.FieldDueDate]; ok {
		if due := parseImportDate(raw); due != nil {
			project.DueDate = due
		}
	}
}

// parseImportDate parses a date field from an export. Accepts a bare
// date or a full RFC 3339 timestamp; anything else is ignored rather
// than failing the row.
func parseImportDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
