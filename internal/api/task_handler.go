package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/patch"
	"github.com/taskwell/taskwell-api/internal/service"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService    service.TaskService
	projectService service.ProjectService
	validator      *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, projectService service.ProjectService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		projectService: projectService,
		validator:      validator.New(),
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), service.CreateTaskInput{
		Title:         req.Title,
		Details:       req.Details,
		Status:        domain.TaskStatus(req.Status),
		Priority:      domain.TaskPriority(req.Priority),
		DueDate:       req.DueDate,
		ScheduledDate: req.ScheduledDate,
		ProjectID:     req.ProjectID,
		Recurrence:    domain.Recurrence(req.Recurrence),
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /api/tasks requests. An optional ?status= query
// parameter narrows the listing to one lane.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var (
		tasks []*domain.Task
		err   error
	)
	if status == "" {
		tasks, err = h.taskService.ListTasks(r.Context())
	} else {
		tasks, err = h.taskService.ListTasksByStatus(r.Context(), domain.TaskStatus(status))
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	taskPatch, err := buildTaskPatch(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, taskPatch)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateTaskNote handles POST /api/tasks/{id}/notes requests.
func (h *TaskHandler) CreateTaskNote(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	var req CreateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	note, err := h.projectService.AddNote(r.Context(), domain.ParentTypeTask, id, req.Body)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, note)
}

// ListTaskNotes handles GET /api/tasks/{id}/notes requests.
func (h *TaskHandler) ListTaskNotes(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	notes, err := h.projectService.ListNotes(r.Context(), domain.ParentTypeTask, id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// buildTaskPatch converts the wire-level partial update into the service
// patch, validating enum fields that were supplied.
func buildTaskPatch(req UpdateTaskRequest) (service.TaskPatch, error) {
	var p service.TaskPatch

	p.Title = req.Title
	p.Details = req.Details
	p.DueDate = req.DueDate
	p.ScheduledDate = req.ScheduledDate
	p.ProjectID = req.ProjectID

	if req.Status.Set {
		if req.Status.Valid {
			status := domain.TaskStatus(req.Status.Value)
			if !status.IsValid() {
				return p, domain.NewValidationError("status", "is not a known lane", domain.ErrInvalidStatus)
			}
			p.Status = patch.NewField(status)
		} else {
			p.Status = patch.NullField[domain.TaskStatus]()
		}
	}
	if req.Priority.Set {
		if req.Priority.Valid {
			priority := domain.TaskPriority(req.Priority.Value)
			if !priority.IsValid() {
				return p, domain.NewValidationError("priority", "is not a known priority", domain.ErrValidation)
			}
			p.Priority = patch.NewField(priority)
		} else {
			p.Priority = patch.NullField[domain.TaskPriority]()
		}
	}
	if req.Recurrence.Set {
		if req.Recurrence.Valid {
			recurrence := domain.Recurrence(req.Recurrence.Value)
			if !recurrence.IsValid() {
				return p, domain.NewValidationError("recurrence", "is not a known rule", domain.ErrInvalidRecurrence)
			}
			p.Recurrence = patch.NewField(recurrence)
		} else {
			p.Recurrence = patch.NullField[domain.Recurrence]()
		}
	}

	return p, nil
}
