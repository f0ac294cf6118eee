package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content-specific validation errors
var (
	// ErrContentBodyEmpty is returned when a content entry has no body.
	ErrContentBodyEmpty = errors.New("content body cannot be empty")

	// ErrContentParentEmpty is returned when a content entry has no parent.
	ErrContentParentEmpty = errors.New("content parent cannot be empty")

	// ErrInvalidParentType is returned when a content entry's parent type
	// is neither task nor project.
	ErrInvalidParentType = errors.New("invalid content parent type")
)

// ParentType names the kind of entity a content entry is attached to.
type ParentType string

const (
	ParentTypeTask    ParentType = "task"
	ParentTypeProject ParentType = "project"
)

// IsValid reports whether the parent type is known.
func (p ParentType) IsValid() bool {
	return p == ParentTypeTask || p == ParentTypeProject
}

// ContentEntry is a free-text note attached to a task or a project.
// Entries are append-only; imports that produce notes always create.
type ContentEntry struct {
	ID         uuid.UUID  `json:"id"`
	ParentType ParentType `json:"parent_type"`
	ParentID   uuid.UUID  `json:"parent_id"`
	Body       string     `json:"body"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewContentEntry creates a content entry attached to the given parent.
func NewContentEntry(parentType ParentType, parentID uuid.UUID, body, source string) (*ContentEntry, error) {
	entry := &ContentEntry{
		ID:         uuid.New(),
		ParentType: parentType,
		ParentID:   parentID,
		Body:       body,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the ContentEntry has valid data.
func (e *ContentEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrInvalidID
	}
	if !e.ParentType.IsValid() {
		return ErrInvalidParentType
	}
	if e.ParentID == uuid.Nil {
		return ErrContentParentEmpty
	}
	if strings.TrimSpace(e.Body) == "" {
		return ErrContentBodyEmpty
	}
	return nil
}
