package deletion

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "auditadmin/pkg/domain"
)

type stubValidator struct {
	err error
}

func (v *stubValidator) Validate(ctx context.Context, recordID id.RecordID, moduleName string) error {
	return v.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestSafeDelete_ConflictShortCircuits(t *testing.T) {
	// Scenario: validation fails because open invoices still reference the
	// tax type. The delete action must never run.
	v := &stubValidator{err: &ConflictError{Module: "Tax Type", Reason: "referenced by 3 open invoices"}}
	o := NewOrchestrator(v, discardLogger())

	calls := 0
	outcome := o.SafeDelete(context.Background(), id.RecordID(uuid.New()), "Tax Type",
		func(ctx context.Context, recordID id.RecordID) (bool, error) {
			calls++
			return true, nil
		})

	assert.Equal(t, StatusValidationFailed, outcome.Status)
	assert.Equal(t, "referenced by 3 open invoices", outcome.Reason)
	assert.Zero(t, calls, "delete action must not be invoked after failed validation")
}

func TestSafeDelete_MapsActionResult(t *testing.T) {
	o := NewOrchestrator(&stubValidator{}, discardLogger())
	recordID := id.RecordID(uuid.New())

	t.Run("row removed", func(t *testing.T) {
		outcome := o.SafeDelete(context.Background(), recordID, "Country",
			func(ctx context.Context, got id.RecordID) (bool, error) {
				require.Equal(t, recordID, got)
				return true, nil
			})
		assert.Equal(t, StatusDeleted, outcome.Status)
		assert.Empty(t, outcome.Reason)
	})

	t.Run("no row existed", func(t *testing.T) {
		outcome := o.SafeDelete(context.Background(), recordID, "Country",
			func(ctx context.Context, _ id.RecordID) (bool, error) {
				return false, nil
			})
		assert.Equal(t, StatusNotFound, outcome.Status)
	})
}

func TestSafeDelete_UnexpectedErrors(t *testing.T) {
	recordID := id.RecordID(uuid.New())

	t.Run("validator infrastructure failure", func(t *testing.T) {
		v := &stubValidator{err: errors.New("db unreachable")}
		o := NewOrchestrator(v, discardLogger())

		calls := 0
		outcome := o.SafeDelete(context.Background(), recordID, "City",
			func(ctx context.Context, _ id.RecordID) (bool, error) {
				calls++
				return true, nil
			})

		assert.Equal(t, StatusUnexpected, outcome.Status)
		assert.Empty(t, outcome.Reason, "internal detail must not surface in the outcome")
		assert.Zero(t, calls)
	})

	t.Run("action failure", func(t *testing.T) {
		o := NewOrchestrator(&stubValidator{}, discardLogger())
		outcome := o.SafeDelete(context.Background(), recordID, "City",
			func(ctx context.Context, _ id.RecordID) (bool, error) {
				return false, errors.New("write timeout")
			})
		assert.Equal(t, StatusUnexpected, outcome.Status)
		assert.Empty(t, outcome.Reason)
	})
}
