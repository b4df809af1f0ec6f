// Package audit captures who changed which master-data record, when, and how.
// Events are append-only and transport-agnostic so sinks (memory store,
// Kafka) can fan out.
package audit

import (
	"time"

	id "auditadmin/pkg/domain"
)

// Action is the mutation kind an event records.
type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionDeleted     Action = "deleted"
	ActionActivated   Action = "activated"
	ActionDeactivated Action = "deactivated"
	ActionImported    Action = "imported"
)

// Event is emitted from the master-data service after a successful mutation.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	GroupID   id.GroupID  `json:"group_id"`
	ActorID   id.UserID   `json:"actor_id"`
	Module    string      `json:"module"`
	Action    Action      `json:"action"`
	RecordID  id.RecordID `json:"record_id"`
	Detail    string      `json:"detail,omitempty"`
}
