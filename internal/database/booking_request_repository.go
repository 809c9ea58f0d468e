package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// BookingRequestRepository handles booking request database operations
type BookingRequestRepository struct {
	db DB
}

// NewBookingRequestRepository creates a new booking request repository
func NewBookingRequestRepository(db DB) *BookingRequestRepository {
	return &BookingRequestRepository{db: db}
}

const bookingRequestColumns = `id, room_id, user_id, check_in_date, check_out_date, message,
	total_price, status, responded_at, responded_by, created_at, updated_at`

// Create inserts a pending booking request
func (r *BookingRequestRepository) Create(req *models.BookingRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.Status = models.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	query := `
		INSERT INTO booking_requests (
			id, room_id, user_id, check_in_date, check_out_date, message,
			total_price, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		query,
		req.ID,
		req.RoomID,
		req.UserID,
		req.CheckInDate,
		req.CheckOutDate,
		req.Message,
		req.TotalPrice,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a request by ID. A missing request returns nil, nil.
func (r *BookingRequestRepository) GetByID(id uuid.UUID) (*models.BookingRequest, error) {
	return r.get(r.db, `SELECT `+bookingRequestColumns+` FROM booking_requests WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves and row-locks a request inside a transaction
func (r *BookingRequestRepository) GetByIDForUpdate(q Queryer, id uuid.UUID) (*models.BookingRequest, error) {
	return r.get(q, `SELECT `+bookingRequestColumns+` FROM booking_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRequestRepository) get(q Queryer, query string, id uuid.UUID) (*models.BookingRequest, error) {
	var req models.BookingRequest
	if err := q.Get(&req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}
	return &req, nil
}

// List returns requests in the given status, newest first. A nil status
// lists every request that is not rejected.
func (r *BookingRequestRepository) List(status *models.RequestStatus) ([]models.BookingRequest, error) {
	requests := []models.BookingRequest{}
	var err error
	if status == nil {
		err = r.db.Select(&requests, `
			SELECT `+bookingRequestColumns+` FROM booking_requests
			WHERE status <> 'rejected'
			ORDER BY created_at DESC
		`)
	} else {
		err = r.db.Select(&requests, `
			SELECT `+bookingRequestColumns+` FROM booking_requests
			WHERE status = $1
			ORDER BY created_at DESC
		`, *status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	return requests, nil
}

// ListByUser returns a user's requests in every status, newest first
func (r *BookingRequestRepository) ListByUser(userID uuid.UUID) ([]models.BookingRequest, error) {
	requests := []models.BookingRequest{}
	err := r.db.Select(&requests, `
		SELECT `+bookingRequestColumns+` FROM booking_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user booking requests: %w", err)
	}
	return requests, nil
}

// MarkResponded moves a pending request to status. It returns
// ErrConcurrentUpdate when the request is no longer pending.
func (r *BookingRequestRepository) MarkResponded(q Queryer, id uuid.UUID, status models.RequestStatus, adminID uuid.UUID, at time.Time) error {
	result, err := q.Exec(`
		UPDATE booking_requests
		SET status = $2, responded_at = $3, responded_by = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, status, at, adminID)
	if err != nil {
		return fmt.Errorf("failed to update booking request: %w", err)
	}
	return casResult(result, "update booking request")
}

// Delete removes a processed request. Pending requests are left in place and
// reported as ErrConcurrentUpdate.
func (r *BookingRequestRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(
		`DELETE FROM booking_requests WHERE id = $1 AND status <> 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking request: %w", err)
	}
	return casResult(result, "delete booking request")
}
