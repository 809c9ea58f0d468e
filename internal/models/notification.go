package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationRejection NotificationType = "rejection"
	NotificationInfo      NotificationType = "info"
	NotificationSuccess   NotificationType = "success"
	NotificationWarning   NotificationType = "warning"
)

// RelatedType names the entity a notification refers to
type RelatedType string

const (
	RelatedBookingRequest RelatedType = "booking-request"
	RelatedRoom           RelatedType = "room"
	RelatedBooking        RelatedType = "booking"
)

// Notification is a message addressed to one user
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	RelatedID   *uuid.UUID       `json:"related_id,omitempty" db:"related_id"`
	RelatedType *RelatedType     `json:"related_type,omitempty" db:"related_type"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty" db:"expires_at"`
}

// NewNotification builds an unread notification. expiresInDays <= 0 means it never expires.
func NewNotification(userID uuid.UUID, kind NotificationType, title, message string, relatedID *uuid.UUID, relatedType *RelatedType, expiresInDays int, now time.Time) *Notification {
	n := &Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        kind,
		Title:       title,
		Message:     message,
		RelatedID:   relatedID,
		RelatedType: relatedType,
		CreatedAt:   now,
	}
	if expiresInDays > 0 {
		expires := now.Add(time.Duration(expiresInDays) * Day)
		n.ExpiresAt = &expires
	}
	return n
}
