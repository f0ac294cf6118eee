package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
)

// BoardHandler handles board-level HTTP requests: the grouped lane view
// and the reorder transaction.
type BoardHandler struct {
	taskService  service.TaskService
	boardService service.BoardService
	validator    *validator.Validate
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(taskService service.TaskService, boardService service.BoardService) *BoardHandler {
	return &BoardHandler{
		taskService:  taskService,
		boardService: boardService,
		validator:    validator.New(),
	}
}

// BoardResponse is the grouped lane view: every lane in board order,
// members in lane order.
type BoardResponse struct {
	Lanes map[domain.TaskStatus][]*domain.Task `json:"lanes"`
}

// ReorderResponse carries the full task list after a reorder commits,
// so clients can redraw every affected lane in one pass.
type ReorderResponse struct {
	Items []*domain.Task `json:"items"`
}

// GetBoard handles GET /api/board requests.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	lanes := make(map[domain.TaskStatus][]*domain.Task, len(domain.TaskStatuses))
	for _, status := range domain.TaskStatuses {
		lanes[status] = []*domain.Task{}
	}
	for _, task := range tasks {
		lanes[task.Status] = append(lanes[task.Status], task)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BoardResponse{Lanes: lanes})
}

// Reorder handles POST /api/board/reorder requests. The whole payload is
// applied atomically or rejected.
func (h *BoardHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tasks, err := h.boardService.Reorder(r.Context(), req.MovedTaskID, domain.TaskStatus(req.ToStatus), req.OrderedTaskIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReorderResponse{Items: tasks})
}
