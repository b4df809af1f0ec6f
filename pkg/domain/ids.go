// Package domain defines typed identifiers shared across the application.
//
// Every identifier is a distinct named type over uuid.UUID so the compiler
// rejects cross-type assignment (passing a GroupID where a RecordID is
// expected fails to compile). Parse functions enforce the trust-boundary
// invariant: IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "auditadmin/pkg/domain-errors"
)

// RecordID identifies a master-data record of any entity type.
type RecordID uuid.UUID

// GroupID identifies a tenant group. Every record is scoped to one group.
type GroupID uuid.UUID

// UserID identifies the authenticated caller.
type UserID uuid.UUID

func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id GroupID) String() string  { return uuid.UUID(id).String() }
func (id UserID) String() string   { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id RecordID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form so JSON payloads carry
// the string representation rather than the raw byte array.
func (id RecordID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id GroupID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *RecordID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "record id")
	if err != nil {
		return err
	}
	*id = RecordID(u)
	return nil
}

func (id *GroupID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "group id")
	if err != nil {
		return err
	}
	*id = GroupID(u)
	return nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "user id")
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

// ParseRecordID parses a canonical UUID string into a RecordID.
// Malformed input fails with CodeInvalidInput so callers can distinguish a
// format error from a business conflict.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parse(s, "record id")
	return RecordID(u), err
}

// ParseGroupID parses a canonical UUID string into a GroupID.
func ParseGroupID(s string) (GroupID, error) {
	u, err := parse(s, "group id")
	return GroupID(u), err
}

// ParseUserID parses a canonical UUID string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s, "user id")
	return UserID(u), err
}

func parse(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be the nil UUID")
	}
	return u, nil
}
