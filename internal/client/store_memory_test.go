package client

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"servicedesk/pkg/platform/sentinel"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) newClient(name, number string) *Client {
	now := time.Now()
	return &Client{
		ID:              uuid.New(),
		Name:            name,
		DedicatedNumber: number,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *ClientStoreSuite) TestLookups() {
	s.Run("finds by ID and dedicated number after insert", func() {
		c := s.newClient("Global Tech Inc.", "G01")
		s.Require().NoError(s.store.Insert(s.ctx, c))

		byID, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("G01", byID.DedicatedNumber)

		byNumber, err := s.store.FindByDedicatedNumber(s.ctx, "G01")
		s.Require().NoError(err)
		s.Equal(c.ID, byNumber.ID)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ClientStoreSuite) TestUniqueness() {
	c := s.newClient("Global Tech Inc.", "G01")
	s.Require().NoError(s.store.Insert(s.ctx, c))

	dup := s.newClient("Granite Works", "G01")
	err := s.store.Insert(s.ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrDuplicateCode)

	// The losing insert must leave nothing behind.
	_, err = s.store.FindByID(s.ctx, dup.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ClientStoreSuite) TestCountByCodePrefix() {
	for _, number := range []string{"G01", "G02", "A01"} {
		s.Require().NoError(s.store.Insert(s.ctx, s.newClient("n", number)))
	}

	n, err := s.store.CountByCodePrefix(s.ctx, "G")
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.store.CountByCodePrefix(s.ctx, "X")
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *ClientStoreSuite) TestListOrdersByNumber() {
	for _, number := range []string{"G02", "A01", "G01"} {
		s.Require().NoError(s.store.Insert(s.ctx, s.newClient("n", number)))
	}

	clients, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(clients, 3)
	s.Equal("A01", clients[0].DedicatedNumber)
	s.Equal("G01", clients[1].DedicatedNumber)
	s.Equal("G02", clients[2].DedicatedNumber)
}
