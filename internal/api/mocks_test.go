package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/importer"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/service/auth"
	"github.com/taskwell/taskwell-api/internal/store"
)

// stubJWTService returns a canned token or error.
type stubJWTService struct {
	token  string
	claims *auth.Claims
	err    error
}

var _ auth.JWTService = (*stubJWTService)(nil)

func (s *stubJWTService) GenerateToken(ctx context.Context) (string, error) {
	return s.token, s.err
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

// stubPasswordVerifier accepts or rejects every comparison.
type stubPasswordVerifier struct {
	err error
}

func (s *stubPasswordVerifier) Compare(hashedPassword, password string) error {
	return s.err
}

// stubBoardService returns canned results for the board endpoints.
type stubBoardService struct {
	tasks []*domain.Task
	err   error
}

var _ service.BoardService = (*stubBoardService)(nil)

func (s *stubBoardService) Reorder(ctx context.Context, movedTaskID uuid.UUID, toStatus domain.TaskStatus, orderedIDs []uuid.UUID) ([]*domain.Task, error) {
	return s.tasks, s.err
}

func (s *stubBoardService) RepairLane(ctx context.Context, status domain.TaskStatus) error {
	return s.err
}

// stubTaskService serves the read side of the board view.
type stubTaskService struct {
	tasks []*domain.Task
	task  *domain.Task
	err   error
}

var _ service.TaskService = (*stubTaskService)(nil)

func (s *stubTaskService) CreateTask(ctx context.Context, input service.CreateTaskInput) (*domain.Task, error) {
	return s.task, s.err
}

func (s *stubTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if s.task == nil && s.err == nil {
		return nil, store.ErrTaskNotFound
	}
	return s.task, s.err
}

func (s *stubTaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks, s.err
}

func (s *stubTaskService) ListTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	return s.tasks, s.err
}

func (s *stubTaskService) UpdateTask(ctx context.Context, id uuid.UUID, p service.TaskPatch) (*domain.Task, error) {
	return s.task, s.err
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.err
}

// stubImportService returns canned preview/commit results.
type stubImportService struct {
	preview *importer.Preview
	result  *importer.CommitResult
	stats   []*store.ImportSourceStat
	err     error
}

var _ service.ImportService = (*stubImportService)(nil)

func (s *stubImportService) Preview(ctx context.Context, source importer.Source, payload string) (*importer.Preview, error) {
	return s.preview, s.err
}

func (s *stubImportService) Commit(ctx context.Context, source importer.Source, rows []importer.CommitRow) (*importer.CommitResult, error) {
	return s.result, s.err
}

func (s *stubImportService) SourceStats(ctx context.Context) ([]*store.ImportSourceStat, error) {
	return s.stats, s.err
}
