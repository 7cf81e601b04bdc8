package contract

import (
	"context"

	"github.com/google/uuid"
)

// Store persists contracts. Insert returns sentinel.ErrDuplicateCode when
// either code's unique index rejects the row. CountByCodePrefix counts over
// the combined client/renew code space, since the two columns share one
// identifier space; it satisfies allocation.Counter.
type Store interface {
	Insert(ctx context.Context, c *Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindByRenewCode(ctx context.Context, renewCode string) (*Contract, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Contract, error)
	CountByCodePrefix(ctx context.Context, prefix string) (int, error)
}
