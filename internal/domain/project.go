package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project-specific validation errors
var (
	// ErrProjectIDEmpty is returned when a project ID is empty or nil.
	ErrProjectIDEmpty = errors.New("project ID cannot be empty")

	// ErrProjectTitleEmpty is returned when a project's title is empty.
	ErrProjectTitleEmpty = errors.New("project title cannot be empty")

	// ErrInboxImmutable is returned when an operation would delete the
	// reserved Inbox project. The Inbox is a singleton that always exists;
	// tasks of deleted projects are reassigned to it.
	ErrInboxImmutable = errors.New("the Inbox project cannot be deleted")
)

// InboxTitle is the title of the reserved fallback project.
const InboxTitle = "Inbox"

// ProjectStatus is one of the fixed set of states a project can be in.
type ProjectStatus string

const (
	ProjectStatusPlanned  ProjectStatus = "planned"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusBlocked  ProjectStatus = "blocked"
	ProjectStatusDone     ProjectStatus = "done"
	ProjectStatusArchived ProjectStatus = "archived"
)

// IsValid reports whether the status is a known project state.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusBlocked,
		ProjectStatusDone, ProjectStatusArchived:
		return true
	}
	return false
}

// NormalizeProjectStatus maps a raw imported status value onto the
// project vocabulary. Imports only carry the four working states;
// anything unrecognized defaults to "planned".
func NormalizeProjectStatus(raw string) ProjectStatus {
	s := ProjectStatus(strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "_"))
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusBlocked, ProjectStatusDone:
		return s
	}
	return ProjectStatusPlanned
}

// ClampCompletion bounds a completion percentage to [0,100].
func ClampCompletion(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Project groups tasks. The Inbox project is a reserved singleton that
// receives tasks orphaned by project deletion and import rows without an
// explicit project.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	DueDate     *time.Time    `json:"due_date"`
	Completion  int           `json:"completion"`
	Source      string        `json:"source"`
	Inbox       bool          `json:"inbox"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a project with defaults applied: status planned,
// zero completion, manual provenance.
func NewProject(title string) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:        uuid.New(),
		Title:     title,
		Status:    ProjectStatusPlanned,
		Source:    SourceManual,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProjectIDEmpty
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrProjectTitleEmpty
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if p.Completion < 0 || p.Completion > 100 {
		return NewValidationError("completion", "must be between 0 and 100", ErrValidation)
	}
	return nil
}
