package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, room_id, user_id, request_id, check_in_date, check_out_date, status,
	total_price, payment_status, payment_date, payment_method, transaction_id,
	check_in_completed, check_in_time, check_out_completed, check_out_time,
	created_at, updated_at`

// HasConflict reports whether a non-cancelled booking of roomID overlaps the
// half-open interval [checkIn, checkOut). Run it inside the transaction that
// holds the room lock.
func (r *BookingRepository) HasConflict(q Queryer, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status <> 'Cancelled'
			  AND check_in_date < $3
			  AND check_out_date > $2
		)
	`
	if err := q.Get(&exists, query, roomID, checkIn, checkOut); err != nil {
		return false, fmt.Errorf("failed to check booking conflict: %w", err)
	}
	return exists, nil
}

// Create inserts a booking
func (r *BookingRepository) Create(q Queryer, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := `
		INSERT INTO bookings (
			id, room_id, user_id, request_id, check_in_date, check_out_date,
			status, total_price, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(
		query,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.RequestID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.Status,
		booking.TotalPrice,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a booking by ID. A missing booking returns nil, nil.
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// List returns bookings newest first. A nil userID lists every booking.
func (r *BookingRepository) List(userID *uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	var err error
	if userID == nil {
		err = r.db.Select(&bookings,
			`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	} else {
		err = r.db.Select(&bookings,
			`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`,
			*userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking from one status to another. It returns
// ErrConcurrentUpdate when the booking is no longer in status from.
func (r *BookingRepository) UpdateStatus(id uuid.UUID, from, to models.BookingStatus) error {
	result, err := r.db.Exec(`
		UPDATE bookings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", translateError(err))
	}
	return casResult(result, "update booking status")
}

// MarkPaid records a payment on a confirmed booking that is not yet paid
func (r *BookingRepository) MarkPaid(id uuid.UUID, method, transactionID string, paidAt time.Time) error {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET payment_status = 'paid', payment_date = $2, payment_method = $3,
		    transaction_id = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'Confirmed' AND payment_status <> 'paid'
	`, id, paidAt, method, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", translateError(err))
	}
	return casResult(result, "mark booking paid")
}

// MarkCheckedIn records check-in on a paid booking
func (r *BookingRepository) MarkCheckedIn(id uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET check_in_completed = TRUE, check_in_time = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status = 'paid' AND check_in_completed = FALSE
		  AND status = 'Confirmed'
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark check-in: %w", err)
	}
	return casResult(result, "mark check-in")
}

// MarkCheckedOut records check-out and completes the booking
func (r *BookingRepository) MarkCheckedOut(id uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET check_out_completed = TRUE, check_out_time = $2, status = 'Completed',
		    updated_at = NOW()
		WHERE id = $1 AND check_in_completed = TRUE AND check_out_completed = FALSE
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark check-out: %w", err)
	}
	return casResult(result, "mark check-out")
}

// casResult maps a conditional update that touched nothing to ErrConcurrentUpdate
func casResult(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if rows == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}
