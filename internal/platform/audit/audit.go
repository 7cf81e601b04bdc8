// Package audit records who created which record, and with which codes.
// Events are best-effort: services log publish failures but never fail the
// request over them.
package audit

import (
	"context"
	"time"
)

// Actions emitted by the domain services.
const (
	ActionClientCreated   = "client.created"
	ActionContractCreated = "contract.created"
	ActionContractRenewed = "contract.renewed"
	ActionTicketCreated   = "ticket.created"
)

// Event is a single audit record.
type Event struct {
	Action   string    `json:"action"`
	Actor    string    `json:"actor"`
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Codes    []string  `json:"codes,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}
