package contract

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"servicedesk/pkg/platform/sentinel"
)

// InMemoryStore keeps contracts in mutex-guarded maps, enforcing the same
// combined-space code uniqueness the contract_codes table does in Postgres.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Contract
	byCode map[string]uuid.UUID // client and renew codes share one space
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[uuid.UUID]*Contract),
		byCode: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, c *Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byCode[c.ClientCode]; dup {
		return sentinel.ErrDuplicateCode
	}
	if _, dup := s.byCode[c.RenewCode]; dup {
		return sentinel.ErrDuplicateCode
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byCode[c.ClientCode] = c.ID
	s.byCode[c.RenewCode] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) FindByRenewCode(_ context.Context, renewCode string) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[renewCode]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := s.byID[id]
	if c.RenewCode != renewCode {
		// The code exists but as a client code, not a renew code.
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) ListByClient(_ context.Context, clientID uuid.UUID) ([]*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Contract
	for _, c := range s.byID {
		if c.ClientID == clientID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClientCode < out[j].ClientCode
	})
	return out, nil
}

func (s *InMemoryStore) CountByCodePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.byID {
		if strings.HasPrefix(c.ClientCode, prefix) {
			n++
		}
		if strings.HasPrefix(c.RenewCode, prefix) {
			n++
		}
	}
	return n, nil
}
