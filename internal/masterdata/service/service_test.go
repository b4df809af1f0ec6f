package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"auditadmin/internal/audit"
	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/store"
	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/paging"
	"auditadmin/pkg/requestcontext"
)

// ServiceSuite exercises the generic service over the in-memory hub with a
// country/state pair, the smallest hierarchy that covers parent links and
// delete validation.
type ServiceSuite struct {
	suite.Suite
	hub        *store.InMemoryHub
	auditStore *audit.MemoryStore
	countries  *Service
	states     *Service
	ctx        context.Context
	groupID    id.GroupID
	userID     id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.hub = store.NewInMemoryHub()
	s.auditStore = audit.NewMemoryStore()
	publisher := audit.NewStorePublisher(s.auditStore)

	var countryDesc, stateDesc masterdata.Descriptor
	for _, desc := range masterdata.Registry() {
		switch desc.Resource {
		case "countries":
			countryDesc = desc
		case "states":
			stateDesc = desc
		}
	}

	countryStore := s.hub.For(countryDesc)
	stateStore := s.hub.For(stateDesc)

	s.countries = New(countryDesc, countryStore, logger, WithAudit(publisher))
	s.states = New(stateDesc, stateStore, logger, WithAudit(publisher), WithParentStore(countryStore))

	s.groupID = id.GroupID(uuid.New())
	s.userID = id.UserID(uuid.New())
	s.ctx = requestcontext.WithIdentity(context.Background(), s.userID, s.groupID)
}

func (s *ServiceSuite) mustCreateCountry(name string) id.RecordID {
	rec, err := s.countries.Create(s.ctx, Input{Name: name})
	s.Require().NoError(err)
	return rec.ID
}

func (s *ServiceSuite) TestCreateAndGet() {
	s.Run("creates an active record owned by the caller", func() {
		rec, err := s.countries.Create(s.ctx, Input{Name: "  Germany ", Code: "DE"})
		s.Require().NoError(err)
		s.Equal("Germany", rec.Name)
		s.Equal("DE", rec.Code)
		s.True(rec.Active)
		s.Equal(s.groupID, rec.GroupID)
		s.Equal(s.userID, rec.CreatedBy)

		found, err := s.countries.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.Name, found.Name)
	})

	s.Run("rejects empty name", func() {
		_, err := s.countries.Create(s.ctx, Input{Name: "   "})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects duplicate name", func() {
		s.mustCreateCountry("France")
		_, err := s.countries.Create(s.ctx, Input{Name: "france"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("requires group identity", func() {
		_, err := s.countries.Create(context.Background(), Input{Name: "Spain"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("get for unknown id is not found", func() {
		_, err := s.countries.Get(s.ctx, id.RecordID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestParentValidation() {
	s.Run("state requires a country", func() {
		_, err := s.states.Create(s.ctx, Input{Name: "Bavaria"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("state with a live parent succeeds", func() {
		countryID := s.mustCreateCountry("Austria")
		rec, err := s.states.Create(s.ctx, Input{Name: "Tyrol", ParentID: &countryID})
		s.Require().NoError(err)
		s.Require().NotNil(rec.ParentID)
		s.Equal(countryID, *rec.ParentID)
	})

	s.Run("unknown parent is a validation failure", func() {
		phantom := id.RecordID(uuid.New())
		_, err := s.states.Create(s.ctx, Input{Name: "Nowhere", ParentID: &phantom})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("country does not take a parent", func() {
		other := id.RecordID(uuid.New())
		_, err := s.countries.Create(s.ctx, Input{Name: "Italy", ParentID: &other})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestListPagination() {
	for _, name := range []string{"Argentina", "Brazil", "Chile", "Denmark", "Estonia"} {
		s.mustCreateCountry(name)
	}

	page1, err := s.countries.List(s.ctx, store.ListFilter{Page: paging.Params{Page: 1, Size: 2}})
	s.Require().NoError(err)
	s.Equal(5, page1.TotalCount)
	s.Equal(3, page1.TotalPages)
	s.Len(page1.Items, 2)
	s.Equal("Argentina", page1.Items[0].Name)
	s.False(page1.HasPrevious)
	s.True(page1.HasNext)

	page3, err := s.countries.List(s.ctx, store.ListFilter{Page: paging.Params{Page: 3, Size: 2}})
	s.Require().NoError(err)
	s.Len(page3.Items, 1)
	s.True(page3.HasPrevious)
	s.False(page3.HasNext)

	s.Run("search narrows the listing", func() {
		result, err := s.countries.List(s.ctx, store.ListFilter{
			Search: "braz",
			Page:   paging.Params{Page: 1, Size: 10},
		})
		s.Require().NoError(err)
		s.Equal(1, result.TotalCount)
		s.Equal("Brazil", result.Items[0].Name)
	})

	s.Run("other groups see nothing", func() {
		otherCtx := requestcontext.WithIdentity(context.Background(), s.userID, id.GroupID(uuid.New()))
		result, err := s.countries.List(otherCtx, store.ListFilter{Page: paging.Params{Page: 1, Size: 10}})
		s.Require().NoError(err)
		s.Equal(0, result.TotalCount)
	})
}

func (s *ServiceSuite) TestSafeDelete() {
	s.Run("delete blocked while children reference the record", func() {
		countryID := s.mustCreateCountry("Japan")
		_, err := s.states.Create(s.ctx, Input{Name: "Kansai", ParentID: &countryID})
		s.Require().NoError(err)

		err = s.countries.Delete(s.ctx, countryID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "states")

		// Record survives the blocked delete.
		_, err = s.countries.Get(s.ctx, countryID)
		s.Require().NoError(err)
	})

	s.Run("delete succeeds once children are gone", func() {
		countryID := s.mustCreateCountry("Iceland")
		s.Require().NoError(s.countries.Delete(s.ctx, countryID))

		_, err := s.countries.Get(s.ctx, countryID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deleting a missing record is not found", func() {
		err := s.countries.Delete(s.ctx, id.RecordID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestSetActive() {
	countryID := s.mustCreateCountry("Norway")

	rec, err := s.countries.SetActive(s.ctx, countryID, false)
	s.Require().NoError(err)
	s.False(rec.Active)

	_, err = s.countries.SetActive(s.ctx, countryID, false)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	rec, err = s.countries.SetActive(s.ctx, countryID, true)
	s.Require().NoError(err)
	s.True(rec.Active)
}

func (s *ServiceSuite) TestAuditTrail() {
	countryID := s.mustCreateCountry("Kenya")
	_, err := s.countries.Update(s.ctx, countryID, Input{Name: "Kenya", Code: "KE"})
	s.Require().NoError(err)
	s.Require().NoError(s.countries.Delete(s.ctx, countryID))

	events, err := s.auditStore.ListByGroup(s.ctx, s.groupID)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(audit.ActionCreated, events[0].Action)
	s.Equal(audit.ActionUpdated, events[1].Action)
	s.Equal(audit.ActionDeleted, events[2].Action)
	for _, e := range events {
		s.Equal("Country", e.Module)
		s.Equal(s.userID, e.ActorID)
	}
}

func (s *ServiceSuite) TestNoteImportEmitsSummaryEvent() {
	s.countries.NoteImport(s.ctx, 7, 2)

	events, err := s.auditStore.ListByGroup(s.ctx, s.groupID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionImported, events[0].Action)
	s.Equal("Country", events[0].Module)
	s.Equal(s.userID, events[0].ActorID)
	s.Equal("imported=7 rejected=2", events[0].Detail)
}

func (s *ServiceSuite) TestRequestTimeStampsRecords() {
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, fixed)

	rec, err := s.countries.Create(ctx, Input{Name: "Peru"})
	s.Require().NoError(err)
	s.Equal(fixed, rec.CreatedAt)
	s.Equal(fixed, rec.UpdatedAt)
}
