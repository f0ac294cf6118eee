package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/patch"
	"github.com/taskwell/taskwell-api/internal/service"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	projectService service.ProjectService
	validator      *validator.Validate
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		validator:      validator.New(),
	}
}

// CreateProject handles POST /api/projects requests.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		DueDate:     req.DueDate,
		Completion:  req.Completion,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}

// GetProject handles GET /api/projects/{id} requests.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// ListProjects handles GET /api/projects requests.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projects)
}

// UpdateProject handles PATCH /api/projects/{id} requests.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	var req UpdateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	projectPatch, err := buildProjectPatch(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), id, projectPatch)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/{id} requests. The
// project's tasks are reassigned to the Inbox; the Inbox itself cannot
// be deleted.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateProjectNote handles POST /api/projects/{id}/notes requests.
func (h *ProjectHandler) CreateProjectNote(w http.ResponseWriter, r *http.Request) {
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

	note, err := h.projectService.AddNote(r.Context(), domain.ParentTypeProject, id, req.Body)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, note)
}

// ListProjectNotes handles GET /api/projects/{id}/notes requests.
func (h *ProjectHandler) ListProjectNotes(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	notes, err := h.projectService.ListNotes(r.Context(), domain.ParentTypeProject, id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// buildProjectPatch converts the wire-level partial update into the
// service patch, validating the status when supplied.
func buildProjectPatch(req UpdateProjectRequest) (service.ProjectPatch, error) {
	var p service.ProjectPatch

	p.Title = req.Title
	p.Description = req.Description
	p.DueDate = req.DueDate
	p.Completion = req.Completion

	if req.Status.Set {
		if req.Status.Valid {
			status := domain.ProjectStatus(req.Status.Value)
			if !status.IsValid() {
				return p, domain.NewValidationError("status", "is not a known project status", domain.ErrInvalidStatus)
			}
			p.Status = patch.NewField(status)
		} else {
			p.Status = patch.NullField[domain.ProjectStatus]()
		}
	}

	return p, nil
}
