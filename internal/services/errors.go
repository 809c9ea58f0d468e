package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure so handlers can pick a status code
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
)

// Error is a failure whose Message is safe to show to the caller
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed or unacceptable input
func ValidationError(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// AuthenticationError reports missing or bad credentials
func AuthenticationError(format string, args ...interface{}) *Error {
	return newError(KindAuthentication, format, args...)
}

// AuthorizationError reports a caller acting outside their role
func AuthorizationError(format string, args ...interface{}) *Error {
	return newError(KindAuthorization, format, args...)
}

// NotFoundError reports a missing entity
func NotFoundError(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// ConflictError reports a state clash such as overlapping dates
func ConflictError(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// KindOf returns the kind of err, or KindInternal for errors that did not
// originate as a service Error
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// Common caller-facing messages
const (
	msgRoomNotFound        = "Room not found"
	msgBookingNotFound     = "Booking not found"
	msgRequestNotFound     = "Booking request not found"
	msgRoomUnavailable     = "Room is not available"
	msgDatesConflict       = "Room is already booked for these dates"
	msgInvalidDateRange    = "Check-out date must be after check-in date"
	msgRequestProcessed    = "Request already processed"
	msgConcurrentUpdate    = "Booking was modified concurrently"
	msgAccessDenied        = "Access denied"
	msgAdminOnly           = "Admin access required"
	msgNotificationMissing = "Notification not found"
)
