package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusCompleted BookingStatus = "Completed"
)

// IsValid reports whether s is a known booking status
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// PaymentStatus represents the payment sub-state of a booking
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DefaultPaymentMethod is recorded when the caller does not name one
const DefaultPaymentMethod = "credit_card"

// Booking represents a room reservation
type Booking struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	RoomID            uuid.UUID     `json:"room_id" db:"room_id"`
	UserID            uuid.UUID     `json:"user_id" db:"user_id"`
	RequestID         *uuid.UUID    `json:"request_id,omitempty" db:"request_id"`
	CheckInDate       time.Time     `json:"check_in_date" db:"check_in_date"`
	CheckOutDate      time.Time     `json:"check_out_date" db:"check_out_date"`
	Status            BookingStatus `json:"status" db:"status"`
	TotalPrice        float64       `json:"total_price" db:"total_price"`
	PaymentStatus     PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentDate       *time.Time    `json:"payment_date,omitempty" db:"payment_date"`
	PaymentMethod     *string       `json:"payment_method,omitempty" db:"payment_method"`
	TransactionID     *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	CheckInCompleted  bool          `json:"check_in_completed" db:"check_in_completed"`
	CheckInTime       *time.Time    `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutCompleted bool          `json:"check_out_completed" db:"check_out_completed"`
	CheckOutTime      *time.Time    `json:"check_out_time,omitempty" db:"check_out_time"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// Range returns the stay interval of the booking
func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
}

// IsPaid reports whether the booking has been paid
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// IsOwnedBy reports whether the booking belongs to userID
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}
