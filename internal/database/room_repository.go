package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// RoomRepository handles room database operations
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, room_number, type, price, capacity, amenities, rating, image_url,
	is_available, description, university, approval_status, warden_id, created_at, updated_at`

// Create inserts a new room
func (r *RoomRepository) Create(room *models.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.Amenities == nil {
		room.Amenities = models.StringArray{}
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	query := `
		INSERT INTO rooms (
			id, room_number, type, price, capacity, amenities, rating, image_url,
			is_available, description, university, approval_status, warden_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(
		query,
		room.ID,
		room.RoomNumber,
		room.Type,
		room.Price,
		room.Capacity,
		room.Amenities,
		room.Rating,
		room.ImageURL,
		room.IsAvailable,
		room.Description,
		room.University,
		room.ApprovalStatus,
		room.WardenID,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a room by ID. A missing room returns nil, nil.
func (r *RoomRepository) GetByID(id uuid.UUID) (*models.Room, error) {
	return r.Find(r.db, id)
}

// Find is GetByID on an explicit connection or transaction
func (r *RoomRepository) Find(q Queryer, id uuid.UUID) (*models.Room, error) {
	return r.get(q, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves and row-locks a room inside a transaction.
// Booking writers serialize on this lock.
func (r *RoomRepository) GetByIDForUpdate(q Queryer, id uuid.UUID) (*models.Room, error) {
	return r.get(q, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
}

func (r *RoomRepository) get(q Queryer, query string, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := q.Get(&room, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// List returns rooms matching filter, ordered by room number
func (r *RoomRepository) List(filter models.RoomFilter) ([]models.Room, error) {
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filter.Type)
		argCount++
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argCount))
		args = append(args, *filter.MinPrice)
		argCount++
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argCount))
		args = append(args, *filter.MaxPrice)
		argCount++
	}
	if filter.Available != nil {
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", argCount))
		args = append(args, *filter.Available)
		argCount++
	}
	if filter.ApprovalStatus != nil {
		conditions = append(conditions, fmt.Sprintf("approval_status = $%d", argCount))
		args = append(args, *filter.ApprovalStatus)
		argCount++
	}

	query := `SELECT ` + roomColumns + ` FROM rooms`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY room_number"

	rooms := []models.Room{}
	if err := r.db.Select(&rooms, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// Update writes all editable columns of room
func (r *RoomRepository) Update(room *models.Room) error {
	room.UpdatedAt = time.Now()

	query := `
		UPDATE rooms SET
			room_number = $2, type = $3, price = $4, capacity = $5, amenities = $6,
			image_url = $7, is_available = $8, description = $9, university = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.Exec(
		query,
		room.ID,
		room.RoomNumber,
		room.Type,
		room.Price,
		room.Capacity,
		room.Amenities,
		room.ImageURL,
		room.IsAvailable,
		room.Description,
		room.University,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", translateError(err))
	}

	return expectOneRow(result, "update room")
}

// SetApprovalStatus changes the listing approval state of a room
func (r *RoomRepository) SetApprovalStatus(id uuid.UUID, status models.ApprovalStatus) error {
	result, err := r.db.Exec(
		`UPDATE rooms SET approval_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to set approval status: %w", err)
	}

	return expectOneRow(result, "set approval status")
}

// RefreshRating recomputes the cached rating from the room's reviews
func (r *RoomRepository) RefreshRating(q Queryer, id uuid.UUID) error {
	_, err := q.Exec(`
		UPDATE rooms SET rating = COALESCE(
			(SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE room_id = $1), 0
		), updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to refresh rating: %w", err)
	}
	return nil
}

// HasActiveBookings reports whether any non-cancelled booking references the room
func (r *RoomRepository) HasActiveBookings(q Queryer, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE room_id = $1 AND status <> 'Cancelled')`
	if err := q.Get(&exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check room bookings: %w", err)
	}
	return exists, nil
}

// Delete removes the room and its cancelled bookings. Any remaining booking
// blocks the delete through the foreign key.
func (r *RoomRepository) Delete(q Queryer, id uuid.UUID) error {
	if _, err := q.Exec(`DELETE FROM bookings WHERE room_id = $1 AND status = 'Cancelled'`, id); err != nil {
		return fmt.Errorf("failed to delete cancelled bookings: %w", translateError(err))
	}

	result, err := q.Exec(`DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", translateError(err))
	}

	return expectOneRow(result, "delete room")
}

// expectOneRow returns sql.ErrNoRows when result touched nothing
func expectOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
