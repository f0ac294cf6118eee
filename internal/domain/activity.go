package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityEntry is an audit record describing a mutation of a tracked
// entity. Entries are written as a side effect of board reorders and
// import commits and are never read back by the core.
type ActivityEntry struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Action     string          `json:"action"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewActivityEntry creates an audit record for the given entity and action.
// Detail may be nil; when set it must be a valid JSON document.
func NewActivityEntry(entityType string, entityID uuid.UUID, action string, detail json.RawMessage) *ActivityEntry {
	return &ActivityEntry{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
}
