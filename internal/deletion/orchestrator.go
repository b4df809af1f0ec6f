package deletion

import (
	"context"
	"errors"
	"log/slog"

	id "auditadmin/pkg/domain"
	"auditadmin/pkg/requestcontext"
)

// Status is the terminal state of a safe-delete attempt.
type Status string

const (
	StatusDeleted          Status = "deleted"
	StatusNotFound         Status = "not_found"
	StatusValidationFailed Status = "validation_failed"
	StatusUnexpected       Status = "unexpected_error"
)

// Outcome is the normalized result of SafeDelete. Reason is set only for
// ValidationFailed and is safe to show to clients; unexpected errors keep
// their detail in the server log.
type Outcome struct {
	Status Status
	Reason string
}

// Validator is the slice of Gateway the orchestrator depends on.
type Validator interface {
	Validate(ctx context.Context, recordID id.RecordID, moduleName string) error
}

// DeleteAction removes the record with the given id and reports whether a row
// existed and was removed. Supplied per entity by the caller.
type DeleteAction func(ctx context.Context, recordID id.RecordID) (bool, error)

// Orchestrator composes the validation gateway with an entity-specific delete
// action. The one ordering guarantee: the action never begins before
// validation completes successfully. The protocol does not guarantee
// idempotence of the action itself, so failed outcomes are never retried
// here; a new client request is required.
type Orchestrator struct {
	validator Validator
	logger    *slog.Logger
}

func NewOrchestrator(validator Validator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{validator: validator, logger: logger}
}

// SafeDelete validates first and short-circuits on conflict without ever
// invoking the action. Two concurrent calls for the same id may both pass
// validation; the loser surfaces as NotFound, not as an error.
func (o *Orchestrator) SafeDelete(ctx context.Context, recordID id.RecordID, moduleName string, action DeleteAction) Outcome {
	if err := o.validator.Validate(ctx, recordID, moduleName); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return Outcome{Status: StatusValidationFailed, Reason: conflict.Reason}
		}
		o.logUnexpected(ctx, "delete validation failed", moduleName, recordID, err)
		return Outcome{Status: StatusUnexpected}
	}

	removed, err := action(ctx, recordID)
	if err != nil {
		o.logUnexpected(ctx, "delete action failed", moduleName, recordID, err)
		return Outcome{Status: StatusUnexpected}
	}
	if !removed {
		return Outcome{Status: StatusNotFound}
	}
	return Outcome{Status: StatusDeleted}
}

func (o *Orchestrator) logUnexpected(ctx context.Context, msg, moduleName string, recordID id.RecordID, err error) {
	o.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"module", moduleName,
		"record_id", recordID.String(),
		"error", err,
	)
}
