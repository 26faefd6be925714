package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of audited activity.
type Action string

const (
	ActionScreeningPerformed Action = "screening_performed"
	ActionListSynced         Action = "list_synced"
	ActionListSyncFailed     Action = "list_sync_failed"
)

// Event is the audit record published for compliance activity. Metadata holds
// action-specific details (query summary, list id, record counts).
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Action    Action            `json:"action"`
	Subject   string            `json:"subject,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEvent stamps a fresh event for the given action.
func NewEvent(action Action, metadata map[string]string) Event {
	return Event{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}
