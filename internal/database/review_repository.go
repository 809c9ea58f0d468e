package database

import (
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. A second review for the same booking returns
// ErrDuplicate.
func (r *ReviewRepository) Create(q Queryer, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	_, err := q.Exec(`
		INSERT INTO reviews (id, booking_id, room_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		review.ID,
		review.BookingID,
		review.RoomID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", translateError(err))
	}
	return nil
}

// ListByRoom returns a room's reviews with reviewer names, newest first
func (r *ReviewRepository) ListByRoom(roomID uuid.UUID) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.Select(&reviews, `
		SELECT rv.id, rv.booking_id, rv.room_id, rv.user_id, u.name AS user_name,
		       rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.room_id = $1
		ORDER BY rv.created_at DESC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
