// Package service implements the generic master-data CRUD service. One
// instance per entity type, configured by its descriptor; the per-entity
// behavior differences live entirely in the descriptor, not in code.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"auditadmin/internal/audit"
	"auditadmin/internal/deletion"
	"auditadmin/internal/masterdata"
	mdmetrics "auditadmin/internal/masterdata/metrics"
	"auditadmin/internal/masterdata/models"
	"auditadmin/internal/masterdata/store"
	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/paging"
	"auditadmin/pkg/platform/sentinel"
	"auditadmin/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks auditadmin/internal/masterdata/store Store

// Service orchestrates CRUD, soft-delete validation, auditing and metrics
// for one master-data entity type.
type Service struct {
	desc        masterdata.Descriptor
	store       store.Store
	parentStore store.Store
	deleter     *deletion.Orchestrator
	audit       audit.Publisher
	metrics     *mdmetrics.Metrics
	logger      *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithParentStore wires the store of the descriptor's parent resource so
// create/update can verify the parent exists.
func WithParentStore(parent store.Store) Option {
	return func(s *Service) { s.parentStore = parent }
}

// WithAudit wires an audit sink; mutations emit events after success.
func WithAudit(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithMetrics wires the prometheus counters.
func WithMetrics(m *mdmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(desc masterdata.Descriptor, st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		desc:   desc,
		store:  st,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	var validator deletion.Validator = deletion.NewGateway(st)
	if desc.SkipDeleteValidation {
		validator = passValidator{}
	}
	s.deleter = deletion.NewOrchestrator(validator, logger)
	return s
}

// passValidator preserves the source behavior for entities whose deletes
// intentionally bypass the reference check.
type passValidator struct{}

func (passValidator) Validate(ctx context.Context, recordID id.RecordID, moduleName string) error {
	return nil
}

// ModuleName returns the human-readable entity label.
func (s *Service) ModuleName() string { return s.desc.ModuleName }

// Descriptor returns the entity configuration.
func (s *Service) Descriptor() masterdata.Descriptor { return s.desc }

// List returns one page of records wrapped in the pagination envelope.
func (s *Service) List(ctx context.Context, filter store.ListFilter) (paging.PagedResult[models.Record], error) {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return paging.PagedResult[models.Record]{}, err
	}

	records, total, err := s.store.List(ctx, groupID, filter)
	if err != nil {
		return paging.PagedResult[models.Record]{}, dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("failed to list %s records", s.desc.ModuleName))
	}

	items := make([]models.Record, 0, len(records))
	for _, rec := range records {
		items = append(items, *rec)
	}
	return paging.New(items, total, filter.Page.Page, filter.Page.Size), nil
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.FindByID(ctx, groupID, recordID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return rec, nil
}

// Input carries the caller-editable fields of a record.
type Input struct {
	Name        string
	Code        string
	Description string
	ParentID    *id.RecordID
	Details     map[string]string
}

// Create validates the input and parent link, persists the record, and emits
// audit/metrics on success.
func (s *Service) Create(ctx context.Context, in Input) (*models.Record, error) {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := models.NewRecord(id.RecordID(uuid.New()), groupID, in.Name, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	rec.Code = strings.TrimSpace(in.Code)
	rec.Description = strings.TrimSpace(in.Description)
	rec.ParentID = in.ParentID
	rec.Details = in.Details

	if err := s.checkParent(ctx, rec.ParentID); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "%s name must be unique", s.desc.ModuleName)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("failed to create %s", s.desc.ModuleName))
	}

	s.emit(ctx, audit.ActionCreated, rec.ID, rec.Name)
	s.count(func(m *mdmetrics.Metrics) { m.RecordsCreated.WithLabelValues(s.desc.ModuleName).Inc() })
	return rec, nil
}

// Update replaces the editable fields of an existing record.
func (s *Service) Update(ctx context.Context, recordID id.RecordID, in Input) (*models.Record, error) {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if err := s.checkParent(ctx, in.ParentID); err != nil {
		return nil, err
	}

	rec, err := s.store.FindByID(ctx, groupID, recordID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	rec.Name = name
	rec.Code = strings.TrimSpace(in.Code)
	rec.Description = strings.TrimSpace(in.Description)
	rec.ParentID = in.ParentID
	rec.Details = in.Details
	rec.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "%s name must be unique", s.desc.ModuleName)
		}
		return nil, s.wrapStoreErr(err)
	}

	s.emit(ctx, audit.ActionUpdated, rec.ID, rec.Name)
	s.count(func(m *mdmetrics.Metrics) { m.RecordsUpdated.WithLabelValues(s.desc.ModuleName).Inc() })
	return rec, nil
}

// Delete routes through the safe-deletion orchestrator: referential
// validation first (unless the descriptor opts out), then the soft delete.
func (s *Service) Delete(ctx context.Context, recordID id.RecordID) error {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	outcome := s.deleter.SafeDelete(ctx, recordID, s.desc.ModuleName,
		func(ctx context.Context, rid id.RecordID) (bool, error) {
			return s.store.Delete(ctx, groupID, rid, now)
		})

	switch outcome.Status {
	case deletion.StatusDeleted:
		s.emit(ctx, audit.ActionDeleted, recordID, "")
		s.count(func(m *mdmetrics.Metrics) { m.RecordsDeleted.WithLabelValues(s.desc.ModuleName).Inc() })
		return nil
	case deletion.StatusValidationFailed:
		s.count(func(m *mdmetrics.Metrics) { m.DeleteConflicts.WithLabelValues(s.desc.ModuleName).Inc() })
		return dErrors.Newf(dErrors.CodeValidation, "%s cannot be deleted: %s", s.desc.ModuleName, outcome.Reason)
	case deletion.StatusNotFound:
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", s.desc.ModuleName)
	default:
		return dErrors.Newf(dErrors.CodeInternal, "failed to delete %s", s.desc.ModuleName)
	}
}

// SetActive toggles the soft-delete visibility flag using the atomic
// validate-then-mutate callback pattern; the store holds its lock (mutex or
// FOR UPDATE) across both steps.
func (s *Service) SetActive(ctx context.Context, recordID id.RecordID, active bool) (*models.Record, error) {
	groupID, err := requireGroup(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	rec, err := s.store.Execute(ctx, groupID, recordID,
		func(r *models.Record) error {
			if active {
				return r.CanReactivate()
			}
			return r.CanDeactivate()
		},
		func(r *models.Record) {
			r.Active = active
			r.UpdatedAt = now
		},
	)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	action := audit.ActionDeactivated
	if active {
		action = audit.ActionActivated
	}
	s.emit(ctx, action, rec.ID, rec.Name)
	return rec, nil
}

func (s *Service) checkParent(ctx context.Context, parentID *id.RecordID) error {
	if s.desc.Parent == nil {
		if parentID != nil {
			return dErrors.Newf(dErrors.CodeInvalidInput, "%s does not take a parent reference", s.desc.ModuleName)
		}
		return nil
	}
	if parentID == nil {
		if s.desc.Parent.Required {
			return dErrors.Newf(dErrors.CodeValidation, "%s requires a parent reference", s.desc.ModuleName)
		}
		return nil
	}
	if s.parentStore == nil {
		return nil
	}
	groupID := requestcontext.GroupID(ctx)
	if _, err := s.parentStore.FindByID(ctx, groupID, *parentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "parent record not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify parent record")
	}
	return nil
}

func (s *Service) wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", s.desc.ModuleName)
	}
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal,
		fmt.Sprintf("%s operation failed", s.desc.ModuleName))
}

// NoteImport records a bulk import run on the audit trail. Per-row creates
// already emit their own events; this summary ties them to one run.
func (s *Service) NoteImport(ctx context.Context, imported, rejected int) {
	s.emit(ctx, audit.ActionImported, id.RecordID{},
		fmt.Sprintf("imported=%d rejected=%d", imported, rejected))
}

func (s *Service) emit(ctx context.Context, action audit.Action, recordID id.RecordID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		GroupID:   requestcontext.GroupID(ctx),
		ActorID:   requestcontext.UserID(ctx),
		Module:    s.desc.ModuleName,
		Action:    action,
		RecordID:  recordID,
		Detail:    detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"module", s.desc.ModuleName,
			"action", string(action),
			"error", err,
		)
	}
}

func (s *Service) count(fn func(*mdmetrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

// requireGroup enforces the MissingIdentity rule: no tenant claim, no access.
func requireGroup(ctx context.Context) (id.GroupID, error) {
	groupID := requestcontext.GroupID(ctx)
	if groupID.IsZero() {
		return id.GroupID{}, dErrors.New(dErrors.CodeUnauthorized, "missing group identity claim")
	}
	return groupID, nil
}
