package services

import (
	"errors"
	"strings"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReviewService records guest reviews of completed stays
type ReviewService struct {
	db       database.DB
	reviews  *database.ReviewRepository
	bookings *database.BookingRepository
	rooms    *database.RoomRepository
}

// NewReviewService creates a new review service
func NewReviewService(db database.DB, reviews *database.ReviewRepository, bookings *database.BookingRepository, rooms *database.RoomRepository) *ReviewService {
	return &ReviewService{db: db, reviews: reviews, bookings: bookings, rooms: rooms}
}

// CreateReviewInput is a review of one completed booking
type CreateReviewInput struct {
	RoomID    uuid.UUID
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

// Create stores a review and refreshes the room's cached rating
func (s *ReviewService) Create(p models.Principal, in CreateReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ValidationError("Rating must be between 1 and 5")
	}

	booking, err := s.bookings.GetByID(in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NotFoundError(msgBookingNotFound)
	}
	if !booking.IsOwnedBy(p.UserID) {
		return nil, AuthorizationError(msgAccessDenied)
	}
	if booking.RoomID != in.RoomID {
		return nil, ValidationError("Booking is not for this room")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, ValidationError("Only completed stays can be reviewed")
	}

	review := &models.Review{
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		UserID:    p.UserID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}

	err = database.RunInTx(s.db, func(tx *sqlx.Tx) error {
		if err := s.reviews.Create(tx, review); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return ConflictError("This booking has already been reviewed")
			}
			return err
		}
		return s.rooms.RefreshRating(tx, review.RoomID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}
