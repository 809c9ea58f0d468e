package services

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/metrics"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Lifecycle refusal reasons
const (
	msgOnlyConfirmedPaid     = "Only confirmed bookings can be paid"
	msgAlreadyPaid           = "Booking is already paid"
	msgPaymentRequired       = "Payment required before check-in"
	msgOnlyConfirmedCheckIn  = "Only confirmed bookings can be checked in"
	msgAlreadyCheckedIn      = "Already checked in"
	msgCheckInFirst          = "Must check in before check out"
	msgAlreadyCheckedOut     = "Already checked out"
	msgInvalidStatus         = "Invalid status"
	msgCompletedByCheckout   = "Completed is set by check-out"
	msgInvalidTransition     = "Invalid status transition"
	msgCheckedInNotCancelled = "Checked-in bookings cannot be cancelled"
)

// BookingService implements the booking lifecycle: direct creation, status
// changes, mock payment, check-in and check-out
type BookingService struct {
	db       database.DB
	rooms    *database.RoomRepository
	bookings *database.BookingRepository
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	db database.DB,
	rooms *database.RoomRepository,
	bookings *database.BookingRepository,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		db:       db,
		rooms:    rooms,
		bookings: bookings,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateBookingInput is a direct booking request
type CreateBookingInput struct {
	RoomID   uuid.UUID
	CheckIn  time.Time
	CheckOut time.Time
}

// Create books a room directly. The room row is locked for the duration of
// the conflict check and insert, so two overlapping creates cannot both win.
func (s *BookingService) Create(p models.Principal, in CreateBookingInput) (*models.Booking, error) {
	stay, err := models.NewDateRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, ValidationError(msgInvalidDateRange)
	}

	booking := &models.Booking{
		RoomID:        in.RoomID,
		UserID:        p.UserID,
		CheckInDate:   stay.CheckIn,
		CheckOutDate:  stay.CheckOut,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}

	err = database.RunInTx(s.db, func(tx *sqlx.Tx) error {
		room, err := s.rooms.GetByIDForUpdate(tx, in.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return NotFoundError(msgRoomNotFound)
		}
		if !room.AcceptsBookings() {
			return ValidationError(msgRoomUnavailable)
		}

		conflict, err := s.bookings.HasConflict(tx, room.ID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return err
		}
		if conflict {
			metrics.IncConflict("direct")
			return ConflictError(msgDatesConflict)
		}

		booking.TotalPrice = stay.PriceFor(room.Price)
		return bookingWriteError(s.bookings.Create(tx, booking), "direct")
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingEvent("created")
	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"room_id":    booking.RoomID,
		"user_id":    booking.UserID,
		"nights":     stay.Nights(),
	}).Info("Booking created")

	return booking, nil
}

// Get returns a booking visible to the caller: its owner or staff
func (s *BookingService) Get(p models.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !p.IsStaff() && !booking.IsOwnedBy(p.UserID) {
		return nil, AuthorizationError(msgAccessDenied)
	}
	return booking, nil
}

// List returns the caller's bookings, or every booking for staff
func (s *BookingService) List(p models.Principal) ([]models.Booking, error) {
	if p.IsStaff() {
		return s.bookings.List(nil)
	}
	return s.bookings.List(&p.UserID)
}

// UpdateStatus changes a booking's status. Admins may move between Pending,
// Confirmed and Cancelled; owners may only cancel. Completed is reached
// through check-out alone and terminal statuses are never left.
func (s *BookingService) UpdateStatus(p models.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	if !status.IsValid() {
		return nil, ValidationError(msgInvalidStatus)
	}

	booking, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !p.IsAdmin() && (!booking.IsOwnedBy(p.UserID) || status != models.BookingStatusCancelled) {
		return nil, AuthorizationError(msgAccessDenied)
	}
	if status == models.BookingStatusCompleted {
		return nil, ValidationError(msgCompletedByCheckout)
	}
	if booking.Status.IsTerminal() {
		return nil, ValidationError(msgInvalidTransition)
	}
	if booking.Status == status {
		return booking, nil
	}
	if status == models.BookingStatusCancelled && booking.CheckInCompleted {
		return nil, ValidationError(msgCheckedInNotCancelled)
	}

	if err := s.bookings.UpdateStatus(id, booking.Status, status); err != nil {
		return nil, casError(err)
	}

	metrics.IncBookingEvent(strings.ToLower(string(status)))
	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"from":       booking.Status,
		"to":         status,
		"actor":      p.UserID,
	}).Info("Booking status changed")

	booking.Status = status
	booking.UpdatedAt = s.now()
	return booking, nil
}

// ProcessPayment records a mock payment by the booking owner
func (s *BookingService) ProcessPayment(p models.Principal, id uuid.UUID, method string) (*models.Booking, error) {
	booking, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !booking.IsOwnedBy(p.UserID) {
		return nil, AuthorizationError(msgAccessDenied)
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ValidationError(msgOnlyConfirmedPaid)
	}
	if booking.IsPaid() {
		return nil, ValidationError(msgAlreadyPaid)
	}

	method = strings.TrimSpace(method)
	if method == "" {
		method = models.DefaultPaymentMethod
	}
	now := s.now()
	transactionID := newTransactionID(now)

	if err := s.bookings.MarkPaid(id, method, transactionID, now); err != nil {
		return nil, casError(err)
	}

	metrics.IncBookingEvent("paid")
	s.logger.WithFields(logrus.Fields{
		"booking_id":     id,
		"transaction_id": transactionID,
		"amount":         booking.TotalPrice,
	}).Info("Payment processed")

	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentDate = &now
	booking.PaymentMethod = &method
	booking.TransactionID = &transactionID
	booking.UpdatedAt = now
	return booking, nil
}

// CheckIn marks a paid booking as checked in
func (s *BookingService) CheckIn(p models.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadForOperation(p, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsPaid() {
		return nil, ValidationError(msgPaymentRequired)
	}
	if booking.CheckInCompleted {
		return nil, ValidationError(msgAlreadyCheckedIn)
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ValidationError(msgOnlyConfirmedCheckIn)
	}

	now := s.now()
	if err := s.bookings.MarkCheckedIn(id, now); err != nil {
		return nil, casError(err)
	}

	metrics.IncBookingEvent("checked_in")
	booking.CheckInCompleted = true
	booking.CheckInTime = &now
	booking.UpdatedAt = now
	return booking, nil
}

// CheckOut marks a checked-in booking as checked out and completes it
func (s *BookingService) CheckOut(p models.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadForOperation(p, id)
	if err != nil {
		return nil, err
	}
	if !booking.CheckInCompleted {
		return nil, ValidationError(msgCheckInFirst)
	}
	if booking.CheckOutCompleted {
		return nil, ValidationError(msgAlreadyCheckedOut)
	}

	now := s.now()
	if err := s.bookings.MarkCheckedOut(id, now); err != nil {
		return nil, casError(err)
	}

	metrics.IncBookingEvent("completed")
	booking.CheckOutCompleted = true
	booking.CheckOutTime = &now
	booking.Status = models.BookingStatusCompleted
	booking.UpdatedAt = now
	return booking, nil
}

func (s *BookingService) load(id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NotFoundError(msgBookingNotFound)
	}
	return booking, nil
}

// loadForOperation loads a booking for check-in or check-out, which staff
// and the owner may perform
func (s *BookingService) loadForOperation(p models.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !p.IsStaff() && !booking.IsOwnedBy(p.UserID) {
		return nil, AuthorizationError(msgAccessDenied)
	}
	return booking, nil
}

// bookingWriteError turns the overlap constraint into the same conflict the
// explicit check reports
func bookingWriteError(err error, channel string) error {
	if errors.Is(err, database.ErrExclusionViolation) {
		metrics.IncConflict(channel)
		return ConflictError(msgDatesConflict)
	}
	return err
}

func casError(err error) error {
	if errors.Is(err, database.ErrConcurrentUpdate) {
		return ConflictError(msgConcurrentUpdate)
	}
	return err
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newTransactionID returns TXN<unix millis><9 base36 chars>
func newTransactionID(now time.Time) string {
	var b strings.Builder
	b.WriteString("TXN")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
