package api

import (
	"errors"
	"net/http"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/service/auth"
	"github.com/taskwell/taskwell-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrBadCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrInboxMissing),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrInboxProtected),
		errors.Is(err, domain.ErrInboxImmutable),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// A reorder payload that is internally inconsistent is well-formed
	// JSON but semantically unprocessable.
	case errors.Is(err, service.ErrInconsistentOrder):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, service.ErrUnknownImportSource),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrInvalidParentType),
		errors.Is(err, domain.ErrTaskTitleEmpty),
		errors.Is(err, domain.ErrProjectTitleEmpty),
		errors.Is(err, domain.ErrContentBodyEmpty):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrBadCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrInboxMissing):
		return "Project not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, service.ErrInboxProtected),
		errors.Is(err, domain.ErrInboxImmutable):
		return "The Inbox project cannot be deleted"

	case errors.Is(err, store.ErrDuplicate):
		return "A conflicting record already exists"

	case errors.Is(err, service.ErrInconsistentOrder):
		return "Ordering references tasks outside the target lane"

	case errors.Is(err, service.ErrUnknownImportSource):
		return "Unknown import source"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Validation errors carry a field and message that are safe to show.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrInvalidParentType),
		errors.Is(err, domain.ErrTaskTitleEmpty),
		errors.Is(err, domain.ErrProjectTitleEmpty),
		errors.Is(err, domain.ErrContentBodyEmpty):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return "Validation error: " + validationErr.Error()
		}
		return "Validation error: " + err.Error()

	default:
		return "An unexpected error occurred"
	}
}
