package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer record. DedicatedNumber is allocated exactly once at
// creation from the client's name and is never reassigned.
type Client struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DedicatedNumber string    `json:"dedicated_number"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
