package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/domain/lane"
	"github.com/taskwell/taskwell-api/internal/store"
)

// fakeTransactor satisfies store.Transactor without a database. The
// in-memory stores below ignore the nil transaction handle.
type fakeTransactor struct{}

func (fakeTransactor) Transact(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// failingTransactor returns the given error without invoking fn, for
// exercising transaction-failure paths.
type failingTransactor struct{ err error }

func (t failingTransactor) Transact(ctx context.Context, fn store.TxFn) error {
	return t.err
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func cloneProject(p *domain.Project) *domain.Project {
	c := *p
	return &c
}

// memTaskStore is an in-memory store.TaskStore with the same ordering
// semantics as the Postgres implementation.
type memTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if _, ok := s.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *memTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (s *memTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	byStatus := make(map[domain.TaskStatus][]*domain.Task)
	for _, task := range s.tasks {
		byStatus[task.Status] = append(byStatus[task.Status], cloneTask(task))
	}
	result := make([]*domain.Task, 0, len(s.tasks))
	for _, status := range domain.TaskStatuses {
		members := byStatus[status]
		lane.Sort(members)
		result = append(result, members...)
	}
	return result, nil
}

func (s *memTaskStore) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.Status == status {
			out = append(out, cloneTask(task))
		}
	}
	lane.Sort(out)
	return out, nil
}

func (s *memTaskStore) ListBySource(ctx context.Context, source string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.Source == source {
			out = append(out, cloneTask(task))
		}
	}
	lane.Sort(out)
	return out, nil
}

func (s *memTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *memTaskStore) SetLanePlacement(ctx context.Context, id uuid.UUID, status domain.TaskStatus, order int) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.LaneOrder = order
	return nil
}

func (s *memTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) ReassignProject(ctx context.Context, fromProject, toProject uuid.UUID) error {
	for _, task := range s.tasks {
		if task.ProjectID == fromProject {
			task.ProjectID = toProject
		}
	}
	return nil
}

func (s *memTaskStore) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	count := 0
	for _, task := range s.tasks {
		if task.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *memTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// memProjectStore is an in-memory store.ProjectStore.
type memProjectStore struct {
	projects map[uuid.UUID]*domain.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[uuid.UUID]*domain.Project)}
}

func (s *memProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if project.Inbox {
		for _, p := range s.projects {
			if p.Inbox {
				return store.ErrDuplicate
			}
		}
	}
	s.projects[project.ID] = cloneProject(project)
	return nil
}

func (s *memProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	return cloneProject(project), nil
}

func (s *memProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(s.projects))
	for _, project := range s.projects {
		out = append(out, cloneProject(project))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memProjectStore) ListBySource(ctx context.Context, source string) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, project := range s.projects {
		if project.Source == source {
			out = append(out, cloneProject(project))
		}
	}
	return out, nil
}

func (s *memProjectStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.projects[id]
	return ok, nil
}

func (s *memProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if _, ok := s.projects[project.ID]; !ok {
		return store.ErrProjectNotFound
	}
	s.projects[project.ID] = cloneProject(project)
	return nil
}

func (s *memProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	project, ok := s.projects[id]
	if !ok {
		return store.ErrProjectNotFound
	}
	if project.Inbox {
		return store.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *memProjectStore) GetInbox(ctx context.Context) (*domain.Project, error) {
	for _, project := range s.projects {
		if project.Inbox {
			return cloneProject(project), nil
		}
	}
	return nil, store.ErrInboxMissing
}

func (s *memProjectStore) EnsureInbox(ctx context.Context) (*domain.Project, error) {
	if inbox, err := s.GetInbox(ctx); err == nil {
		return inbox, nil
	}
	inbox := &domain.Project{
		ID:        uuid.New(),
		Title:     domain.InboxTitle,
		Status:    domain.ProjectStatusActive,
		Source:    domain.SourceManual,
		Inbox:     true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.projects[inbox.ID] = inbox
	return cloneProject(inbox), nil
}

func (s *memProjectStore) WithTx(tx *sql.Tx) store.ProjectStore { return s }

// memContentStore is an in-memory store.ContentStore.
type memContentStore struct {
	entries []*domain.ContentEntry
}

func newMemContentStore() *memContentStore { return &memContentStore{} }

func (s *memContentStore) Create(ctx context.Context, entry *domain.ContentEntry) error {
	c := *entry
	s.entries = append(s.entries, &c)
	return nil
}

func (s *memContentStore) ListByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.ContentEntry, error) {
	var out []*domain.ContentEntry
	for _, entry := range s.entries {
		if entry.ParentType == parentType && entry.ParentID == parentID {
			c := *entry
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memContentStore) WithTx(tx *sql.Tx) store.ContentStore { return s }

// memActivityStore records audit entries for assertion.
type memActivityStore struct {
	entries []*domain.ActivityEntry
}

func newMemActivityStore() *memActivityStore { return &memActivityStore{} }

func (s *memActivityStore) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	c := *entry
	s.entries = append(s.entries, &c)
	return nil
}

func (s *memActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return s }

func (s *memActivityStore) actions() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

// memImportSourceStore is an in-memory store.ImportSourceStore.
type memImportSourceStore struct {
	stats map[string]*store.ImportSourceStat
}

func newMemImportSourceStore() *memImportSourceStore {
	return &memImportSourceStore{stats: make(map[string]*store.ImportSourceStat)}
}

func (s *memImportSourceStore) Bump(ctx context.Context, source string, at time.Time) error {
	stat, ok := s.stats[source]
	if !ok {
		stat = &store.ImportSourceStat{Source: source}
		s.stats[source] = stat
	}
	stat.ImportCount++
	t := at
	stat.LastImportedAt = &t
	return nil
}

func (s *memImportSourceStore) Get(ctx context.Context, source string) (*store.ImportSourceStat, error) {
	stat, ok := s.stats[source]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *stat
	return &c, nil
}

func (s *memImportSourceStore) WithTx(tx *sql.Tx) store.ImportSourceStore { return s }
