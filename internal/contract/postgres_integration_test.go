//go:build integration

package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"servicedesk/internal/allocation"
	"servicedesk/internal/client"
	"servicedesk/internal/contract"
	"servicedesk/pkg/platform/sentinel"
	"servicedesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *contract.PostgresStore
	clients  *client.PostgresStore
	owner    *client.Client
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = contract.NewPostgres(s.postgres.DB)
	s.clients = client.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "tickets", "contract_codes", "contracts", "clients"))

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.owner = &client.Client{
		ID:              uuid.New(),
		Name:            "Global Tech Inc.",
		DedicatedNumber: "G01",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Require().NoError(s.clients.Insert(ctx, s.owner))
}

func (s *PostgresStoreSuite) newTestContract(clientCode, renewCode string) *contract.Contract {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &contract.Contract{
		ID:         uuid.New(),
		ClientID:   s.owner.ID,
		CreatedBy:  "ops@corp",
		Category:   "server maintenance",
		ClientCode: clientCode,
		RenewCode:  renewCode,
		StartDate:  now,
		EndDate:    now.AddDate(1, 0, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *PostgresStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	c := s.newTestContract("MS25G0101", "MS26G0101")
	s.Require().NoError(s.store.Insert(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ClientCode, found.ClientCode)

	byRenew, err := s.store.FindByRenewCode(ctx, "MS26G0101")
	s.Require().NoError(err)
	s.Equal(c.ID, byRenew.ID)

	_, err = s.store.FindByRenewCode(ctx, "MS25G0101")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateCodesSignalConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, s.newTestContract("MS25G0101", "MS26G0101")))

	// Same client code.
	err := s.store.Insert(ctx, s.newTestContract("MS25G0101", "MS26G0102"))
	s.ErrorIs(err, sentinel.ErrDuplicateCode)

	// Same renew code.
	err = s.store.Insert(ctx, s.newTestContract("MS25G0102", "MS26G0101"))
	s.ErrorIs(err, sentinel.ErrDuplicateCode)
}

// TestCrossColumnDuplicateRejected pins the combined-space guarantee: a
// client code that equals another contract's reserved renew code must be
// rejected even though the per-column indexes would both accept it. This is
// the shape a 2026 creation racing a 2025 creation produces.
func (s *PostgresStoreSuite) TestCrossColumnDuplicateRejected() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, s.newTestContract("MS25G0101", "MS26G0101")))

	err := s.store.Insert(ctx, s.newTestContract("MS26G0101", "MS27G0101"))
	s.ErrorIs(err, sentinel.ErrDuplicateCode)

	// The rejected insert leaves nothing behind.
	_, err = s.store.FindByRenewCode(ctx, "MS27G0101")
	s.ErrorIs(err, sentinel.ErrNotFound)

	n, err := s.store.CountByCodePrefix(ctx, "MS26G01")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestCountSpansBothCodeColumns() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, s.newTestContract("MS25G0101", "MS26G0101")))
	s.Require().NoError(s.store.Insert(ctx, s.newTestContract("MS25G0102", "MS26G0102")))

	n, err := s.store.CountByCodePrefix(ctx, "MS25G01")
	s.Require().NoError(err)
	s.Equal(2, n)

	// The 2026 prefix already holds the reserved renew codes.
	n, err = s.store.CountByCodePrefix(ctx, "MS26G01")
	s.Require().NoError(err)
	s.Equal(2, n)
}

// TestConcurrentAllocation races contract allocations over one prefix pair
// against the real unique indexes.
func (s *PostgresStoreSuite) TestConcurrentAllocation() {
	ctx := context.Background()
	alloc := allocation.New(allocation.WithMaxAttempts(20))

	const workers = 8
	var g errgroup.Group
	codes := make([]allocation.ContractCodes, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			allocated, err := alloc.AllocateContractCode(ctx, s.store, "server maintenance", s.owner.DedicatedNumber, 2025,
				func(ctx context.Context, pair allocation.ContractCodes) error {
					return s.store.Insert(ctx, s.newTestContract(pair.ClientCode, pair.RenewCode))
				})
			codes[i] = allocated
			errs[i] = err
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	seen := make(map[string]bool)
	successes := 0
	for i := range workers {
		if errs[i] != nil {
			continue
		}
		successes++
		for _, code := range []string{codes[i].ClientCode, codes[i].RenewCode} {
			s.False(seen[code], "code %s allocated twice", code)
			seen[code] = true
		}
	}
	s.Positive(successes)

	n, err := s.store.CountByCodePrefix(ctx, "MS25G01")
	s.Require().NoError(err)
	s.Equal(successes, n)
}
