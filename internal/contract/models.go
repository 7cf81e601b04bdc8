package contract

import (
	"time"

	"github.com/google/uuid"
)

// Contract is a service contract. ClientCode and RenewCode are allocated
// together at creation and immutable afterwards; RenewCode reserves, under
// the following year's prefix, the identifier a renewal quotes to link the
// successor back to this record.
type Contract struct {
	ID            uuid.UUID  `json:"id"`
	ClientID      uuid.UUID  `json:"client_id"`
	CreatedBy     string     `json:"created_by"`
	Category      string     `json:"category"`
	ClientCode    string     `json:"client_code"`
	RenewCode     string     `json:"renew_code"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Description   string     `json:"description,omitempty"`
	RenewedFromID *uuid.UUID `json:"renewed_from_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
