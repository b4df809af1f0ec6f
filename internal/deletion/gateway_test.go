package deletion

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "auditadmin/pkg/domain"
)

type stubChecker struct {
	count int
	where string
	err   error
}

func (c *stubChecker) References(ctx context.Context, recordID id.RecordID) (int, string, error) {
	return c.count, c.where, c.err
}

func TestGatewayValidate(t *testing.T) {
	recordID := id.RecordID(uuid.New())

	t.Run("no references", func(t *testing.T) {
		g := NewGateway(&stubChecker{})
		assert.NoError(t, g.Validate(context.Background(), recordID, "Department"))
	})

	t.Run("references produce a conflict with the module name", func(t *testing.T) {
		g := NewGateway(&stubChecker{count: 4, where: "designations"})
		err := g.Validate(context.Background(), recordID, "Department")
		require.Error(t, err)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Department", conflict.Module)
		assert.Equal(t, "referenced by 4 designations", conflict.Reason)
		assert.Contains(t, conflict.Error(), "Department cannot be deleted")
	})

	t.Run("checker failure is not a conflict", func(t *testing.T) {
		g := NewGateway(&stubChecker{err: errors.New("db unreachable")})
		err := g.Validate(context.Background(), recordID, "Department")
		require.Error(t, err)

		var conflict *ConflictError
		assert.False(t, errors.As(err, &conflict))
	})
}
