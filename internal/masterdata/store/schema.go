package store

import (
	"context"
	"database/sql"
	"fmt"

	"auditadmin/internal/masterdata"
)

// tableDDL is the shape shared by every master-data table. The partial unique
// index enforces per-group name uniqueness over live rows only, so a name can
// be reused after its record is soft-deleted.
const tableDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id          UUID PRIMARY KEY,
	group_id    UUID NOT NULL,
	name        TEXT NOT NULL,
	code        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	parent_id   UUID,
	details     JSONB NOT NULL DEFAULT '{}',
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_by  UUID NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	deleted_at  TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_group_name_key
	ON %[1]s (group_id, lower(name)) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS %[1]s_group_idx ON %[1]s (group_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS %[1]s_parent_idx ON %[1]s (parent_id) WHERE deleted_at IS NULL;
`

// EnsureSchema creates the table for every registered entity if it does not
// exist. DDL is idempotent, so running it at startup is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, desc := range masterdata.Registry() {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(tableDDL, desc.Table)); err != nil {
			return fmt.Errorf("create table %s: %w", desc.Table, err)
		}
	}
	return nil
}
