// Package models defines the master-data record shape shared by every
// entity type.
package models

import (
	"strings"
	"time"

	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
)

// Record is one master-data row. All entity types (countries, tax types,
// departments, ...) share this shape; entity-specific columns that do not
// warrant their own field live in Details. ParentID links hierarchical
// entities (state to country, designation to department) and is what the
// deletion gateway counts when validating a delete.
type Record struct {
	ID          id.RecordID       `json:"id"`
	GroupID     id.GroupID        `json:"groupId"`
	Name        string            `json:"name"`
	Code        string            `json:"code,omitempty"`
	Description string            `json:"description,omitempty"`
	ParentID    *id.RecordID      `json:"parentId,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Active      bool              `json:"active"`
	CreatedBy   id.UserID         `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewRecord builds an active record with trimmed name, applying the domain
// invariant that every record has a non-empty name and an owning group.
func NewRecord(recordID id.RecordID, groupID id.GroupID, name string, createdBy id.UserID, now time.Time) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if groupID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "group id is required")
	}
	return &Record{
		ID:        recordID,
		GroupID:   groupID,
		Name:      name,
		Active:    true,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanDeactivate reports whether the record may transition to inactive.
func (r *Record) CanDeactivate() error {
	if !r.Active {
		return dErrors.New(dErrors.CodeConflict, "record is already inactive")
	}
	return nil
}

// CanReactivate reports whether the record may transition to active.
func (r *Record) CanReactivate() error {
	if r.Active {
		return dErrors.New(dErrors.CodeConflict, "record is already active")
	}
	return nil
}

// Clone returns a deep copy so in-memory stores never leak internal state.
func (r *Record) Clone() *Record {
	cp := *r
	if r.ParentID != nil {
		parent := *r.ParentID
		cp.ParentID = &parent
	}
	if r.Details != nil {
		cp.Details = make(map[string]string, len(r.Details))
		for k, v := range r.Details {
			cp.Details[k] = v
		}
	}
	return &cp
}
