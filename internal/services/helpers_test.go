package services

import (
	"io"
	"testing"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(n int) time.Time {
	return time.Date(2025, 1, n, 0, 0, 0, 0, time.UTC)
}

func guest() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.RoleGuest}
}

func admin() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}
}

func warden() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.RoleWarden}
}

func assertKind(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected kind for %q", err.Error())
	if message != "" {
		assert.Equal(t, message, err.Error())
	}
}

var roomCols = []string{
	"id", "room_number", "type", "price", "capacity", "amenities", "rating", "image_url",
	"is_available", "description", "university", "approval_status", "warden_id", "created_at", "updated_at",
}

func sampleRoom() models.Room {
	return models.Room{
		ID:             uuid.New(),
		RoomNumber:     "A101",
		Type:           models.RoomTypeSingle,
		Price:          100,
		Capacity:       1,
		ImageURL:       models.DefaultRoomImageURL,
		IsAvailable:    true,
		ApprovalStatus: models.ApprovalApproved,
	}
}

func roomRows(r models.Room) *sqlmock.Rows {
	var wardenID interface{}
	if r.WardenID != nil {
		wardenID = r.WardenID.String()
	}
	return sqlmock.NewRows(roomCols).AddRow(
		r.ID.String(), r.RoomNumber, string(r.Type), r.Price, r.Capacity, "{wifi,desk}", r.Rating, r.ImageURL,
		r.IsAvailable, r.Description, r.University, string(r.ApprovalStatus), wardenID, fixedNow, fixedNow,
	)
}

var bookingCols = []string{
	"id", "room_id", "user_id", "request_id", "check_in_date", "check_out_date", "status",
	"total_price", "payment_status", "payment_date", "payment_method", "transaction_id",
	"check_in_completed", "check_in_time", "check_out_completed", "check_out_time",
	"created_at", "updated_at",
}

func sampleBooking(owner uuid.UUID) models.Booking {
	return models.Booking{
		ID:            uuid.New(),
		RoomID:        uuid.New(),
		UserID:        owner,
		CheckInDate:   day(1),
		CheckOutDate:  day(4),
		Status:        models.BookingStatusConfirmed,
		TotalPrice:    300,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
}

func bookingRows(b models.Booking) *sqlmock.Rows {
	var paymentDate, checkInTime, checkOutTime interface{}
	if b.PaymentDate != nil {
		paymentDate = *b.PaymentDate
	}
	if b.CheckInTime != nil {
		checkInTime = *b.CheckInTime
	}
	if b.CheckOutTime != nil {
		checkOutTime = *b.CheckOutTime
	}
	return sqlmock.NewRows(bookingCols).AddRow(
		b.ID.String(), b.RoomID.String(), b.UserID.String(), nil, b.CheckInDate, b.CheckOutDate, string(b.Status),
		b.TotalPrice, string(b.PaymentStatus), paymentDate, nil, nil,
		b.CheckInCompleted, checkInTime, b.CheckOutCompleted, checkOutTime,
		fixedNow, fixedNow,
	)
}

var requestCols = []string{
	"id", "room_id", "user_id", "check_in_date", "check_out_date", "message",
	"total_price", "status", "responded_at", "responded_by", "created_at", "updated_at",
}

func sampleRequest(roomID, userID uuid.UUID, status models.RequestStatus) models.BookingRequest {
	return models.BookingRequest{
		ID:           uuid.New(),
		RoomID:       roomID,
		UserID:       userID,
		CheckInDate:  day(1),
		CheckOutDate: day(5),
		TotalPrice:   400,
		Status:       status,
	}
}

func requestRows(r models.BookingRequest) *sqlmock.Rows {
	var respondedAt interface{}
	if r.Status != models.RequestStatusPending {
		respondedAt = fixedNow
	}
	return sqlmock.NewRows(requestCols).AddRow(
		r.ID.String(), r.RoomID.String(), r.UserID.String(), r.CheckInDate, r.CheckOutDate, r.Message,
		r.TotalPrice, string(r.Status), respondedAt, nil, fixedNow, fixedNow,
	)
}

func existsRows(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}
