package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/metrics"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const msgOnlyProcessedDeletable = "Only processed requests can be deleted"

// BookingRequestService implements the request → admin decision workflow
type BookingRequestService struct {
	db            database.DB
	requests      *database.BookingRequestRepository
	rooms         *database.RoomRepository
	bookings      *database.BookingRepository
	notifications *NotificationService
	config        config.BookingConfig
	logger        *logrus.Logger
	now           func() time.Time
}

// NewBookingRequestService creates a new booking request service
func NewBookingRequestService(
	db database.DB,
	requests *database.BookingRequestRepository,
	rooms *database.RoomRepository,
	bookings *database.BookingRepository,
	notifications *NotificationService,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingRequestService {
	return &BookingRequestService{
		db:            db,
		requests:      requests,
		rooms:         rooms,
		bookings:      bookings,
		notifications: notifications,
		config:        cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateRequestInput is a guest's booking request
type CreateRequestInput struct {
	RoomID   uuid.UUID
	CheckIn  time.Time
	CheckOut time.Time
	Message  string
}

// ApprovalResult is the outcome of an approval
type ApprovalResult struct {
	Request *models.BookingRequest
	Booking *models.Booking
}

// Create stores a pending request priced from the room's nightly rate
func (s *BookingRequestService) Create(p models.Principal, in CreateRequestInput) (*models.BookingRequest, error) {
	stay, err := models.NewDateRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, ValidationError(msgInvalidDateRange)
	}

	room, err := s.rooms.GetByID(in.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, NotFoundError(msgRoomNotFound)
	}
	if !room.AcceptsBookings() {
		return nil, ValidationError(msgRoomUnavailable)
	}

	req := &models.BookingRequest{
		RoomID:       room.ID,
		UserID:       p.UserID,
		CheckInDate:  stay.CheckIn,
		CheckOutDate: stay.CheckOut,
		Message:      strings.TrimSpace(in.Message),
		TotalPrice:   stay.PriceFor(room.Price),
	}
	if err := s.requests.Create(req); err != nil {
		return nil, err
	}

	metrics.IncRequestDecision("created")
	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"room_id":    req.RoomID,
		"user_id":    req.UserID,
	}).Info("Booking request created")

	return req, nil
}

// List returns requests for administrators. A nil status hides rejected ones.
func (s *BookingRequestService) List(p models.Principal, status *models.RequestStatus) ([]models.BookingRequest, error) {
	if !p.IsAdmin() {
		return nil, AuthorizationError(msgAdminOnly)
	}
	if status != nil && !status.IsValid() {
		return nil, ValidationError("Invalid status filter")
	}
	return s.requests.List(status)
}

// ListMine returns the caller's own requests in every status
func (s *BookingRequestService) ListMine(p models.Principal) ([]models.BookingRequest, error) {
	return s.requests.ListByUser(p.UserID)
}

// Approve turns a pending request into a confirmed, unpaid booking. The
// request and room rows are locked, the dates are re-checked against live
// bookings, and the booking insert, status flip and notification commit
// together.
func (s *BookingRequestService) Approve(p models.Principal, id uuid.UUID) (*ApprovalResult, error) {
	if !p.IsAdmin() {
		return nil, AuthorizationError(msgAdminOnly)
	}

	var result ApprovalResult
	err := database.RunInTx(s.db, func(tx *sqlx.Tx) error {
		req, err := s.requests.GetByIDForUpdate(tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return NotFoundError(msgRequestNotFound)
		}
		if !req.IsPending() {
			return ConflictError(msgRequestProcessed)
		}

		room, err := s.rooms.GetByIDForUpdate(tx, req.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return NotFoundError(msgRoomNotFound)
		}

		stay, err := models.NewDateRange(req.CheckInDate, req.CheckOutDate)
		if err != nil {
			return ValidationError(msgInvalidDateRange)
		}

		conflict, err := s.bookings.HasConflict(tx, room.ID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return err
		}
		if conflict {
			metrics.IncConflict("approval")
			return ConflictError(msgDatesConflict)
		}

		booking := &models.Booking{
			RoomID:        room.ID,
			UserID:        req.UserID,
			RequestID:     &req.ID,
			CheckInDate:   stay.CheckIn,
			CheckOutDate:  stay.CheckOut,
			Status:        models.BookingStatusConfirmed,
			TotalPrice:    stay.PriceFor(room.Price),
			PaymentStatus: models.PaymentStatusUnpaid,
		}
		if err := s.bookings.Create(tx, booking); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return ConflictError(msgRequestProcessed)
			}
			return bookingWriteError(err, "approval")
		}

		now := s.now()
		if err := s.requests.MarkResponded(tx, req.ID, models.RequestStatusApproved, p.UserID, now); err != nil {
			if errors.Is(err, database.ErrConcurrentUpdate) {
				return ConflictError(msgRequestProcessed)
			}
			return err
		}
		req.Status = models.RequestStatusApproved
		req.RespondedAt = &now
		req.RespondedBy = &p.UserID
		req.UpdatedAt = now

		relatedType := models.RelatedBooking
		if _, err := s.notifications.Notify(tx, NotifyInput{
			UserID:      req.UserID,
			Type:        models.NotificationSuccess,
			Title:       "Booking Request Approved",
			Message:     fmt.Sprintf("Your booking request for %s has been approved. Complete payment to secure your stay.", roomTitle(room)),
			RelatedID:   &booking.ID,
			RelatedType: &relatedType,
		}); err != nil {
			return err
		}

		result.Request = req
		result.Booking = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestDecision("approved")
	s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"booking_id": result.Booking.ID,
		"admin_id":   p.UserID,
	}).Info("Booking request approved")

	return &result, nil
}

// Reject marks a pending request rejected and notifies the requester. The
// request is kept for audit.
func (s *BookingRequestService) Reject(p models.Principal, id uuid.UUID) (*models.BookingRequest, error) {
	if !p.IsAdmin() {
		return nil, AuthorizationError(msgAdminOnly)
	}

	var rejected *models.BookingRequest
	err := database.RunInTx(s.db, func(tx *sqlx.Tx) error {
		req, err := s.requests.GetByIDForUpdate(tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return NotFoundError(msgRequestNotFound)
		}
		if !req.IsPending() {
			return ConflictError(msgRequestProcessed)
		}

		room, err := s.rooms.Find(tx, req.RoomID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.requests.MarkResponded(tx, req.ID, models.RequestStatusRejected, p.UserID, now); err != nil {
			if errors.Is(err, database.ErrConcurrentUpdate) {
				return ConflictError(msgRequestProcessed)
			}
			return err
		}
		req.Status = models.RequestStatusRejected
		req.RespondedAt = &now
		req.RespondedBy = &p.UserID
		req.UpdatedAt = now

		relatedType := models.RelatedRoom
		if _, err := s.notifications.Notify(tx, NotifyInput{
			UserID:        req.UserID,
			Type:          models.NotificationRejection,
			Title:         "Booking Request Not Approved",
			Message:       fmt.Sprintf("Your booking request for %s was not approved. Please try another room or contact support for more information.", roomTitle(room)),
			RelatedID:     &req.RoomID,
			RelatedType:   &relatedType,
			ExpiresInDays: s.config.RejectionNoticeTTLDays,
		}); err != nil {
			return err
		}

		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestDecision("rejected")
	s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"admin_id":   p.UserID,
	}).Info("Booking request rejected")

	return rejected, nil
}

// Delete removes an approved or rejected request
func (s *BookingRequestService) Delete(p models.Principal, id uuid.UUID) error {
	if !p.IsAdmin() {
		return AuthorizationError(msgAdminOnly)
	}

	req, err := s.requests.GetByID(id)
	if err != nil {
		return err
	}
	if req == nil {
		return NotFoundError(msgRequestNotFound)
	}
	if req.IsPending() {
		return ConflictError(msgOnlyProcessedDeletable)
	}

	if err := s.requests.Delete(id); err != nil {
		if errors.Is(err, database.ErrConcurrentUpdate) {
			return NotFoundError(msgRequestNotFound)
		}
		return err
	}
	return nil
}

func roomTitle(room *models.Room) string {
	if room == nil || room.RoomNumber == "" {
		return "the requested room"
	}
	return "room " + room.RoomNumber
}
