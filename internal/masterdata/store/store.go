// Package store provides the persistence layer for master-data records: a
// descriptor-driven PostgreSQL store, an in-memory store for tests and local
// runs, and a redis read-through cache for hot list data.
package store

import (
	"context"
	"time"

	"auditadmin/internal/masterdata/models"
	id "auditadmin/pkg/domain"
	"auditadmin/pkg/paging"
)

// ListFilter narrows a listing. Zero value means "all live records of the
// group, first page defaults applied by the caller".
type ListFilter struct {
	// Search matches name or code, case-insensitive substring.
	Search string
	// ParentID restricts to children of one parent record.
	ParentID *id.RecordID
	// IncludeInactive also returns soft-deactivated records.
	IncludeInactive bool
	// Page is validated/clamped upstream (paging.ParseParams).
	Page paging.Params
}

// Store is the persistence contract for one entity type. Implementations
// return sentinel errors (pkg/platform/sentinel); the service layer
// translates them into domain errors.
//
// Delete reports whether a live row existed and was removed, which is what
// the safe-deletion orchestrator maps to Deleted/NotFound.
type Store interface {
	List(ctx context.Context, groupID id.GroupID, filter ListFilter) ([]*models.Record, int, error)
	FindByID(ctx context.Context, groupID id.GroupID, recordID id.RecordID) (*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, groupID id.GroupID, recordID id.RecordID, now time.Time) (bool, error)

	// Execute atomically validates and mutates one record while holding the
	// store's lock (mutex or FOR UPDATE), returning the updated record.
	Execute(ctx context.Context, groupID id.GroupID, recordID id.RecordID,
		validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error)

	// References implements deletion.DependencyChecker for this entity type.
	References(ctx context.Context, recordID id.RecordID) (int, string, error)
}
