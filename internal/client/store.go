package client

import (
	"context"

	"github.com/google/uuid"
)

// Store persists clients. Insert returns sentinel.ErrDuplicateCode when the
// dedicated number's unique index rejects the row; the allocator turns that
// into a fresh attempt. CountByCodePrefix satisfies allocation.Counter.
type Store interface {
	Insert(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByDedicatedNumber(ctx context.Context, number string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	CountByCodePrefix(ctx context.Context, prefix string) (int, error)
}
