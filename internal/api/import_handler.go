package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/importer"
	"github.com/taskwell/taskwell-api/internal/service"
)

// ImportHandler handles the import preview/commit round trip.
type ImportHandler struct {
	importService service.ImportService
	validator     *validator.Validate
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		validator:     validator.New(),
	}
}

// Preview handles POST /api/imports/preview requests. It parses and
// classifies the raw export without writing anything.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req ImportPreviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	preview, err := h.importService.Preview(r.Context(), importer.Source(req.Source), req.Payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, preview)
}

// Commit handles POST /api/imports/commit requests. All confirmed rows
// are applied in one transaction.
func (h *ImportHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req ImportCommitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.importService.Commit(r.Context(), importer.Source(req.Source), req.Rows)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// SourceStats handles GET /api/imports/sources requests: the per-source
// import counters.
func (h *ImportHandler) SourceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.importService.SourceStats(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
