package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/models"
	id "auditadmin/pkg/domain"
	"auditadmin/pkg/platform/sentinel"
)

// InMemoryHub holds records for every entity table behind one mutex so
// cross-table reference checks see a consistent view. Tests and local runs
// use it in place of PostgreSQL.
type InMemoryHub struct {
	mu     sync.RWMutex
	tables map[string]map[id.RecordID]*models.Record
}

func NewInMemoryHub() *InMemoryHub {
	return &InMemoryHub{tables: make(map[string]map[id.RecordID]*models.Record)}
}

// For returns the Store view for one entity descriptor.
func (h *InMemoryHub) For(desc masterdata.Descriptor) *InMemory {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tables[desc.Table] == nil {
		h.tables[desc.Table] = make(map[id.RecordID]*models.Record)
	}
	return &InMemory{hub: h, desc: desc}
}

// InMemory is the in-memory Store for one entity type.
type InMemory struct {
	hub  *InMemoryHub
	desc masterdata.Descriptor
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) table() map[id.RecordID]*models.Record {
	return s.hub.tables[s.desc.Table]
}

func (s *InMemory) List(ctx context.Context, groupID id.GroupID, filter ListFilter) ([]*models.Record, int, error) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	matched := make([]*models.Record, 0)
	for _, rec := range s.table() {
		if rec.GroupID != groupID {
			continue
		}
		if !filter.IncludeInactive && !rec.Active {
			continue
		}
		if filter.ParentID != nil && (rec.ParentID == nil || *rec.ParentID != *filter.ParentID) {
			continue
		}
		if filter.Search != "" && !matchesSearch(rec, filter.Search) {
			continue
		}
		matched = append(matched, rec.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if ni, nj := strings.ToLower(matched[i].Name), strings.ToLower(matched[j].Name); ni != nj {
			return ni < nj
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	page := filter.Page
	if page.Size > 0 {
		start := page.Offset()
		if start > total {
			start = total
		}
		end := start + page.Size
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matchesSearch(rec *models.Record, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(rec.Name), search) ||
		strings.Contains(strings.ToLower(rec.Code), search)
}

func (s *InMemory) FindByID(ctx context.Context, groupID id.GroupID, recordID id.RecordID) (*models.Record, error) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	rec, ok := s.table()[recordID]
	if !ok || rec.GroupID != groupID {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) Create(ctx context.Context, record *models.Record) error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if _, exists := s.table()[record.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, other := range s.table() {
		if other.GroupID == record.GroupID && strings.EqualFold(other.Name, record.Name) {
			return sentinel.ErrConflict
		}
	}
	s.table()[record.ID] = record.Clone()
	return nil
}

func (s *InMemory) Update(ctx context.Context, record *models.Record) error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	existing, ok := s.table()[record.ID]
	if !ok || existing.GroupID != record.GroupID {
		return sentinel.ErrNotFound
	}
	for _, other := range s.table() {
		if other.ID != record.ID && other.GroupID == record.GroupID && strings.EqualFold(other.Name, record.Name) {
			return sentinel.ErrConflict
		}
	}
	s.table()[record.ID] = record.Clone()
	return nil
}

func (s *InMemory) Delete(ctx context.Context, groupID id.GroupID, recordID id.RecordID, now time.Time) (bool, error) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	rec, ok := s.table()[recordID]
	if !ok || rec.GroupID != groupID {
		return false, nil
	}
	delete(s.table(), recordID)
	return true, nil
}

func (s *InMemory) Execute(ctx context.Context, groupID id.GroupID, recordID id.RecordID,
	validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	rec, ok := s.table()[recordID]
	if !ok || rec.GroupID != groupID {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(rec); err != nil {
		return nil, err
	}
	mutate(rec)
	return rec.Clone(), nil
}

// References counts live child rows across the descriptor's declared child
// tables. Matches the postgres implementation: group_id children match on
// the record's group, parent_id children on the parent link.
func (s *InMemory) References(ctx context.Context, recordID id.RecordID) (int, string, error) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	for _, child := range s.desc.Children {
		count := 0
		for _, rec := range s.hub.tables[child.Table] {
			switch child.Column {
			case "group_id":
				if id.RecordID(rec.GroupID) == recordID {
					count++
				}
			default:
				if rec.ParentID != nil && *rec.ParentID == recordID {
					count++
				}
			}
		}
		if count > 0 {
			return count, child.Label, nil
		}
	}
	return 0, "", nil
}
