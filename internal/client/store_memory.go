package client

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"servicedesk/pkg/platform/sentinel"
)

// InMemoryStore keeps clients in a mutex-guarded map. It enforces the same
// dedicated-number uniqueness a Postgres index would, so allocator behavior
// is identical in tests and brokerless dev deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Client
	byNumber map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[uuid.UUID]*Client),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byNumber[c.DedicatedNumber]; dup {
		return sentinel.ErrDuplicateCode
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byNumber[c.DedicatedNumber] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) FindByDedicatedNumber(_ context.Context, number string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.byID))
	for _, c := range s.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DedicatedNumber < out[j].DedicatedNumber
	})
	return out, nil
}

func (s *InMemoryStore) CountByCodePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for number := range s.byNumber {
		if strings.HasPrefix(number, prefix) {
			n++
		}
	}
	return n, nil
}
