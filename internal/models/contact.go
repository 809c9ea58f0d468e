package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus tracks handling of a contact message
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusResolved ContactStatus = "resolved"
)

// IsValid reports whether s is a known contact status
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNew, ContactStatusReplied, ContactStatusResolved:
		return true
	}
	return false
}

// Contact is a message submitted through the contact form
type Contact struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Email     string        `json:"email" db:"email"`
	Subject   string        `json:"subject" db:"subject"`
	Message   string        `json:"message" db:"message"`
	UserID    *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	Status    ContactStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
