package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"servicedesk/pkg/platform/sentinel"
)

type ContractStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *ContractStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestContractStoreSuite(t *testing.T) {
	suite.Run(t, new(ContractStoreSuite))
}

func (s *ContractStoreSuite) newContract(clientID uuid.UUID, clientCode, renewCode string) *Contract {
	now := time.Now()
	return &Contract{
		ID:         uuid.New(),
		ClientID:   clientID,
		Category:   "server maintenance",
		ClientCode: clientCode,
		RenewCode:  renewCode,
		StartDate:  now,
		EndDate:    now.AddDate(1, 0, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *ContractStoreSuite) TestCombinedSpaceUniqueness() {
	clientID := uuid.New()
	first := s.newContract(clientID, "MS25G0101", "MS26G0101")
	s.Require().NoError(s.store.Insert(s.ctx, first))

	s.Run("duplicate client code is rejected", func() {
		dup := s.newContract(clientID, "MS25G0101", "MS26G0199")
		s.Require().ErrorIs(s.store.Insert(s.ctx, dup), sentinel.ErrDuplicateCode)
	})

	s.Run("a client code colliding with a renew code is rejected", func() {
		dup := s.newContract(clientID, "MS26G0101", "MS27G0101")
		s.Require().ErrorIs(s.store.Insert(s.ctx, dup), sentinel.ErrDuplicateCode)
	})

	s.Run("losing inserts leave nothing behind", func() {
		dup := s.newContract(clientID, "MS25G0101", "MS26G0198")
		s.Require().Error(s.store.Insert(s.ctx, dup))
		_, err := s.store.FindByID(s.ctx, dup.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ContractStoreSuite) TestCountByCodePrefix() {
	clientID := uuid.New()
	s.Require().NoError(s.store.Insert(s.ctx, s.newContract(clientID, "MS25G0101", "MS26G0101")))
	s.Require().NoError(s.store.Insert(s.ctx, s.newContract(clientID, "MS25G0102", "MS26G0102")))

	s.Run("current year prefix counts client codes", func() {
		n, err := s.store.CountByCodePrefix(s.ctx, "MS25G01")
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("next year prefix counts reserved renew codes", func() {
		n, err := s.store.CountByCodePrefix(s.ctx, "MS26G01")
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("foreign prefix counts nothing", func() {
		n, err := s.store.CountByCodePrefix(s.ctx, "NW25G01")
		s.Require().NoError(err)
		s.Equal(0, n)
	})
}

func (s *ContractStoreSuite) TestFindByRenewCode() {
	c := s.newContract(uuid.New(), "MS25G0101", "MS26G0101")
	s.Require().NoError(s.store.Insert(s.ctx, c))

	found, err := s.store.FindByRenewCode(s.ctx, "MS26G0101")
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)

	// A client code is not a renew code.
	_, err = s.store.FindByRenewCode(s.ctx, "MS25G0101")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContractStoreSuite) TestListByClient() {
	mine := uuid.New()
	other := uuid.New()
	s.Require().NoError(s.store.Insert(s.ctx, s.newContract(mine, "MS25G0102", "MS26G0102")))
	s.Require().NoError(s.store.Insert(s.ctx, s.newContract(mine, "MS25G0101", "MS26G0101")))
	s.Require().NoError(s.store.Insert(s.ctx, s.newContract(other, "MS25A0101", "MS26A0101")))

	contracts, err := s.store.ListByClient(s.ctx, mine)
	s.Require().NoError(err)
	s.Require().Len(contracts, 2)
	s.Equal("MS25G0101", contracts[0].ClientCode)
	s.Equal("MS25G0102", contracts[1].ClientCode)
}
