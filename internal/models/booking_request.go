package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the state of a booking request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// IsValid reports whether s is a known request status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// BookingRequest is a guest's request for a room, decided by an admin
type BookingRequest struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	RoomID       uuid.UUID     `json:"room_id" db:"room_id"`
	UserID       uuid.UUID     `json:"user_id" db:"user_id"`
	CheckInDate  time.Time     `json:"check_in_date" db:"check_in_date"`
	CheckOutDate time.Time     `json:"check_out_date" db:"check_out_date"`
	Message      string        `json:"message" db:"message"`
	TotalPrice   float64       `json:"total_price" db:"total_price"`
	Status       RequestStatus `json:"status" db:"status"`
	RespondedAt  *time.Time    `json:"responded_at,omitempty" db:"responded_at"`
	RespondedBy  *uuid.UUID    `json:"responded_by,omitempty" db:"responded_by"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Range returns the requested stay interval
func (r *BookingRequest) Range() DateRange {
	return DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}
}

// IsPending reports whether the request still awaits a decision
func (r *BookingRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
