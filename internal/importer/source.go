// Package importer implements the import reconciliation engine: parsing
// delimited exports from external tools, scoring candidate duplicates
// against existing records, and classifying each row into a suggested
// action for the preview/commit round trip.
package importer

import "fmt"

// Source identifies one of the recognized external import sources. The
// set is closed: each tag maps to exactly one row-producing behavior and
// doubles as the provenance tag stamped on created entities.
type Source string

const (
	// SourceTodoist rows produce tasks.
	SourceTodoist Source = "todoist"

	// SourceAppleNotes rows produce content entries attached to a task
	// or project.
	SourceAppleNotes Source = "apple_notes"

	// SourceTrello rows produce projects.
	SourceTrello Source = "trello"

	// SourceNotion rows produce projects.
	SourceNotion Source = "notion"
)

// Sources lists every recognized import source.
var Sources = []Source{SourceTodoist, SourceAppleNotes, SourceTrello, SourceNotion}

// IsValid reports whether the source is one of the recognized tags.
func (s Source) IsValid() bool {
	switch s {
	case SourceTodoist, SourceAppleNotes, SourceTrello, SourceNotion:
		return true
	}
	return false
}

// EntityKind names the kind of existing entity a duplicate match can
// point at.
type EntityKind string

const (
	EntityKindTask    EntityKind = "task"
	EntityKindProject EntityKind = "project"
)

// EntityKind returns the kind of entity the source's rows are matched
// against during duplicate detection. Note-producing sources match
// against tasks: a note title colliding with an existing task title is
// the collision worth surfacing in the preview.
func (s Source) EntityKind() (EntityKind, error) {
	switch s {
	case SourceTodoist, SourceAppleNotes:
		return EntityKindTask, nil
	case SourceTrello, SourceNotion:
		return EntityKindProject, nil
	default:
		return "", fmt.Errorf("unrecognized import source %q", s)
	}
}

// RequiredHeaders returns the headers a batch from this source must
// carry. A batch missing any of them is invalid as a whole.
func (s Source) RequiredHeaders() []string {
	return []string{FieldTitle}
}

// Well-known field names produced by the parser.
const (
	FieldTitle     = "title"
	FieldNotes     = "notes"
	FieldStatus    = "status"
	FieldPriority  = "priority"
	FieldDueDate   = "due_date"
	FieldProjectID = "project_id"
	FieldTaskID    = "task_id"
	FieldBody      = "body"
)
