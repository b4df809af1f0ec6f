package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/models"
	id "auditadmin/pkg/domain"
	"auditadmin/pkg/platform/sentinel"
)

// Postgres persists records of one entity type in its descriptor's table.
// Table and column names come from the compiled-in registry, never from
// request input, so interpolating them into SQL is safe.
type Postgres struct {
	db   *sql.DB
	desc masterdata.Descriptor
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB, desc masterdata.Descriptor) *Postgres {
	return &Postgres{db: db, desc: desc}
}

const recordColumns = `id, group_id, name, code, description, parent_id, details, active, created_by, created_at, updated_at`

func (s *Postgres) List(ctx context.Context, groupID id.GroupID, filter ListFilter) ([]*models.Record, int, error) {
	where := `WHERE group_id = $1 AND deleted_at IS NULL`
	args := []any{uuid.UUID(groupID)}

	if !filter.IncludeInactive {
		where += ` AND active`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, len(args), len(args))
	}
	if filter.ParentID != nil {
		args = append(args, uuid.UUID(*filter.ParentID))
		where += fmt.Sprintf(` AND parent_id = $%d`, len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s %s`, s.desc.Table, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.desc.Table, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY lower(name), id`, recordColumns, s.desc.Table, where)
	if filter.Page.Size > 0 {
		args = append(args, filter.Page.Size, filter.Page.Offset())
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.desc.Table, err)
	}
	defer rows.Close()

	records := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", s.desc.Table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.desc.Table, err)
	}
	return records, total, nil
}

func (s *Postgres) FindByID(ctx context.Context, groupID id.GroupID, recordID id.RecordID) (*models.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1 AND group_id = $2 AND deleted_at IS NULL`,
		recordColumns, s.desc.Table,
	)
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(recordID), uuid.UUID(groupID))
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s by id: %w", s.desc.Table, err)
	}
	return rec, nil
}

func (s *Postgres) Create(ctx context.Context, record *models.Record) error {
	details, err := marshalDetails(record.Details)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.desc.Table, recordColumns)
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.GroupID),
		record.Name,
		record.Code,
		record.Description,
		nullableID(record.ParentID),
		details,
		record.Active,
		uuid.UUID(record.CreatedBy),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create %s: %w", s.desc.Table, err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, record *models.Record) error {
	details, err := marshalDetails(record.Details)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s SET
			name = $3, code = $4, description = $5, parent_id = $6,
			details = $7, active = $8, updated_at = $9
		WHERE id = $1 AND group_id = $2 AND deleted_at IS NULL
	`, s.desc.Table)
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.GroupID),
		record.Name,
		record.Code,
		record.Description,
		nullableID(record.ParentID),
		details,
		record.Active,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update %s: %w", s.desc.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", s.desc.Table, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete soft-removes the row by stamping deleted_at. Reports whether a live
// row existed, which the safe-deletion orchestrator maps to Deleted/NotFound.
func (s *Postgres) Delete(ctx context.Context, groupID id.GroupID, recordID id.RecordID, now time.Time) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET deleted_at = $3 WHERE id = $1 AND group_id = $2 AND deleted_at IS NULL`,
		s.desc.Table,
	)
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(recordID), uuid.UUID(groupID), now)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", s.desc.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", s.desc.Table, err)
	}
	return affected > 0, nil
}

// Execute runs the validate-then-mutate callback pattern inside a transaction
// holding a FOR UPDATE lock on the row.
func (s *Postgres) Execute(ctx context.Context, groupID id.GroupID, recordID id.RecordID,
	validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx on %s: %w", s.desc.Table, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1 AND group_id = $2 AND deleted_at IS NULL FOR UPDATE`,
		recordColumns, s.desc.Table,
	)
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, uuid.UUID(recordID), uuid.UUID(groupID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock %s row: %w", s.desc.Table, err)
	}

	if err := validate(rec); err != nil {
		return nil, err
	}
	mutate(rec)

	details, err := marshalDetails(rec.Details)
	if err != nil {
		return nil, err
	}
	update := fmt.Sprintf(`
		UPDATE %s SET
			name = $3, code = $4, description = $5, parent_id = $6,
			details = $7, active = $8, updated_at = $9
		WHERE id = $1 AND group_id = $2
	`, s.desc.Table)
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(rec.ID), uuid.UUID(rec.GroupID),
		rec.Name, rec.Code, rec.Description, nullableID(rec.ParentID),
		details, rec.Active, rec.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.desc.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s update: %w", s.desc.Table, err)
	}
	return rec, nil
}

// References counts live rows in the descriptor's child tables that still
// point at the record. Returns the first non-empty child label so conflict
// messages name where the references live.
func (s *Postgres) References(ctx context.Context, recordID id.RecordID) (int, string, error) {
	for _, child := range s.desc.Children {
		query := fmt.Sprintf(
			`SELECT count(*) FROM %s WHERE %s = $1 AND deleted_at IS NULL`,
			child.Table, child.Column,
		)
		var count int
		if err := s.db.QueryRowContext(ctx, query, uuid.UUID(recordID)).Scan(&count); err != nil {
			return 0, "", fmt.Errorf("count references in %s: %w", child.Table, err)
		}
		if count > 0 {
			return count, child.Label, nil
		}
	}
	return 0, "", nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		rec       models.Record
		recID     uuid.UUID
		groupID   uuid.UUID
		createdBy uuid.UUID
		parentID  uuid.NullUUID
		details   []byte
	)
	err := row.Scan(
		&recID, &groupID, &rec.Name, &rec.Code, &rec.Description,
		&parentID, &details, &rec.Active, &createdBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ID = id.RecordID(recID)
	rec.GroupID = id.GroupID(groupID)
	rec.CreatedBy = id.UserID(createdBy)
	if parentID.Valid {
		p := id.RecordID(parentID.UUID)
		rec.ParentID = &p
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return nil, fmt.Errorf("decode details: %w", err)
		}
	}
	return &rec, nil
}

func marshalDetails(details map[string]string) ([]byte, error) {
	if len(details) == 0 {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	return b, nil
}

func nullableID(recordID *id.RecordID) uuid.NullUUID {
	if recordID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*recordID), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
