package audit

import (
	"context"
	"sync"
	"time"

	id "auditadmin/pkg/domain"
)

// Publisher is the sink contract the master-data service emits through.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is the append-only persistence contract for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByGroup(ctx context.Context, groupID id.GroupID) ([]Event, error)
}

// StorePublisher persists events synchronously through a Store. Tests and
// single-node deployments use it directly; production wires it behind the
// Worker.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// MemoryStore is the in-memory audit sink.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByGroup(ctx context.Context, groupID id.GroupID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0)
	for _, e := range s.events {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}
