package handler

import (
	"strings"

	"auditadmin/internal/masterdata/service"
	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
)

// RecordRequest is the HTTP body for create and update.
type RecordRequest struct {
	Name        string            `json:"name"`
	Code        string            `json:"code"`
	Description string            `json:"description"`
	ParentID    string            `json:"parentId"`
	Details     map[string]string `json:"details"`
}

func (r RecordRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.ParentID != "" {
		if _, err := id.ParseRecordID(r.ParentID); err != nil {
			return err
		}
	}
	return nil
}

// ToInput converts the validated request to a service input.
func (r RecordRequest) ToInput() service.Input {
	in := service.Input{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		Details:     r.Details,
	}
	if r.ParentID != "" {
		// Validate already parsed this successfully.
		parentID, _ := id.ParseRecordID(r.ParentID)
		in.ParentID = &parentID
	}
	return in
}

// StatusRequest is the HTTP body for the activate/deactivate endpoint.
type StatusRequest struct {
	Active *bool `json:"active"`
}

func (r StatusRequest) Validate() error {
	if r.Active == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "active is required")
	}
	return nil
}
