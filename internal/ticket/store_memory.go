package ticket

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"servicedesk/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Ticket
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[uuid.UUID]*Ticket)}
}

func (s *InMemoryStore) Insert(_ context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryStore) ListByContract(_ context.Context, contractID uuid.UUID) ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ticket
	for _, t := range s.byID {
		if t.ContractID == contractID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}
