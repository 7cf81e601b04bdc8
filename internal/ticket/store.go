package ticket

import (
	"context"

	"github.com/google/uuid"
)

// Store persists tickets.
type Store interface {
	Insert(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
}
