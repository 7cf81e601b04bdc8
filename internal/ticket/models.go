package ticket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status of a maintenance ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// statusRank orders the lifecycle: open, in_progress, closed.
var statusRank = map[Status]int{
	StatusOpen:       0,
	StatusInProgress: 1,
	StatusClosed:     2,
}

// CanTransition reports whether a ticket may move from s to next. The
// lifecycle only moves forward: no reopening, and closed tickets stay
// closed. Skipping in_progress is allowed.
func (s Status) CanTransition(next Status) error {
	if s == StatusClosed {
		return fmt.Errorf("ticket is closed")
	}
	if s == next {
		return fmt.Errorf("ticket is already %s", s)
	}
	if statusRank[next] < statusRank[s] {
		return fmt.Errorf("ticket cannot move back from %s to %s", s, next)
	}
	return nil
}

// Ticket is a maintenance ticket raised under a contract.
type Ticket struct {
	ID         uuid.UUID  `json:"id"`
	ContractID uuid.UUID  `json:"contract_id"`
	Subject    string     `json:"subject"`
	Detail     string     `json:"detail,omitempty"`
	Status     Status     `json:"status"`
	ReportedBy string     `json:"reported_by"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
