// Package transfer moves master-data records in and out as CSV. Export
// streams pages from the listing service; import validates row-by-row and
// creates through the service so auditing and metrics fire per record.
package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"auditadmin/internal/masterdata/models"
	"auditadmin/internal/masterdata/service"
	"auditadmin/internal/masterdata/store"
	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/paging"
)

// RecordService is the slice of the master-data service transfer needs.
type RecordService interface {
	List(ctx context.Context, filter store.ListFilter) (paging.PagedResult[models.Record], error)
	Create(ctx context.Context, in service.Input) (*models.Record, error)
	ModuleName() string
}

// exportPageSize keeps export memory bounded regardless of table size.
const exportPageSize = 500

var columns = []string{"id", "name", "code", "description", "parentId", "active"}

// CSV is the comma-separated implementation of the import/export seam. An
// Excel implementation would satisfy the same handler contract but belongs
// to an external rendering service.
type CSV struct {
	svc RecordService
}

func NewCSV(svc RecordService) *CSV {
	return &CSV{svc: svc}
}

// Export writes the filtered listing, header first, paging through the
// service until exhausted.
func (c *CSV) Export(ctx context.Context, w io.Writer, filter store.ListFilter) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	filter.Page = paging.Params{Page: 1, Size: exportPageSize}
	for {
		page, err := c.svc.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, rec := range page.Items {
			parent := ""
			if rec.ParentID != nil {
				parent = rec.ParentID.String()
			}
			row := []string{
				rec.ID.String(),
				rec.Name,
				rec.Code,
				rec.Description,
				parent,
				fmt.Sprintf("%t", rec.Active),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		if !page.HasNext {
			break
		}
		filter.Page.Page++
	}

	writer.Flush()
	return writer.Error()
}

// RowError reports one rejected import row. Row numbers are 1-based and
// include the header.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Summary reports an import run. Rejected rows never abort the run; the
// caller decides what to do with the per-row errors.
type Summary struct {
	Imported int        `json:"imported"`
	Rejected []RowError `json:"rejected,omitempty"`
}

// Import reads CSV rows (same columns as Export, id ignored) and creates a
// record per valid row.
func (c *CSV) Import(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Summary{}, dErrors.New(dErrors.CodeBadRequest, "csv file is empty")
	}
	if err != nil {
		return Summary{}, dErrors.New(dErrors.CodeBadRequest, "malformed csv header")
	}
	cols, err := mapHeader(header)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{}
	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Rejected = append(summary.Rejected, RowError{Row: rowNum, Reason: "malformed row"})
			continue
		}

		in, err := rowToInput(row, cols)
		if err != nil {
			summary.Rejected = append(summary.Rejected, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if _, err := c.svc.Create(ctx, in); err != nil {
			summary.Rejected = append(summary.Rejected, RowError{Row: rowNum, Reason: dErrors.MessageOf(err)})
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "csv header must include a name column")
	}
	return cols, nil
}

func rowToInput(row []string, cols map[string]int) (service.Input, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	in := service.Input{
		Name:        field("name"),
		Code:        field("code"),
		Description: field("description"),
	}
	if in.Name == "" {
		return service.Input{}, fmt.Errorf("name is required")
	}
	if parent := field("parentId"); parent != "" {
		parentID, err := id.ParseRecordID(parent)
		if err != nil {
			return service.Input{}, fmt.Errorf("invalid parentId")
		}
		in.ParentID = &parentID
	}
	return in, nil
}
