// Package service provides application-level services for managing
// tasks, projects, the board and imports.
package service

import "errors"

// Common service errors - sentinel errors used across service
// implementations. Callers branch on them with errors.Is; the API layer
// maps them to HTTP status codes.
var (
	// ErrInconsistentOrder indicates a reorder payload referenced tasks
	// that are not members of the target lane. The whole reorder is
	// rejected; no lane is partially reindexed.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrInconsistentOrder = errors.New("ordering references tasks outside the target lane")

	// ErrInboxProtected indicates an attempt to delete the reserved
	// Inbox project.
	// API layer should map this to HTTP 409 Conflict.
	ErrInboxProtected = errors.New("the Inbox project cannot be deleted")

	// ErrUnknownImportSource indicates an import request named a source
	// outside the recognized set.
	// API layer should map this to HTTP 400 Bad Request.
	ErrUnknownImportSource = errors.New("unknown import source")
)
