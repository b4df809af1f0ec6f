// Package deletion implements the safe-deletion protocol shared by every
// master-data endpoint: validate referential constraints first, delete only
// when validation passes, and normalize all outcomes into a small closed set.
package deletion

import (
	"context"
	"fmt"

	id "auditadmin/pkg/domain"
)

// DependencyChecker is the external collaborator that knows whether other
// records still reference an entity. The real referential-integrity check
// lives in the store layer.
type DependencyChecker interface {
	// References returns how many records reference the given id and a short
	// label for where the references live (e.g. "states").
	References(ctx context.Context, recordID id.RecordID) (int, string, error)
}

// ConflictError reports that a business rule blocks deletion. It carries the
// human-readable module name for message formatting only.
type ConflictError struct {
	Module string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s cannot be deleted: %s", e.Module, e.Reason)
}

// Gateway checks whether an entity can be safely removed. Pure read: no code
// path through Validate mutates anything.
type Gateway struct {
	checker DependencyChecker
}

func NewGateway(checker DependencyChecker) *Gateway {
	return &Gateway{checker: checker}
}

// Validate returns nil when the record is safe to delete, a *ConflictError
// when other records still reference it, or the checker's error unchanged
// when the check itself fails.
func (g *Gateway) Validate(ctx context.Context, recordID id.RecordID, moduleName string) error {
	count, where, err := g.checker.References(ctx, recordID)
	if err != nil {
		return fmt.Errorf("check references for %s: %w", moduleName, err)
	}
	if count > 0 {
		return &ConflictError{
			Module: moduleName,
			Reason: fmt.Sprintf("referenced by %d %s", count, where),
		}
	}
	return nil
}
