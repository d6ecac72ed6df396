package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact represents a contact-form submission. Email delivery is handled
// elsewhere; this record is the system of record for inbound messages.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Handled   bool      `json:"handled"`
	CreatedAt time.Time `json:"created_at"`
}
