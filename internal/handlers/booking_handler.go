package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles direct bookings and their lifecycle
type BookingHandler struct {
	bookingService *services.BookingService
	audit          auditor
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, auditService *services.AuditService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		audit:          auditor{service: auditService},
	}
}

// StayRequest carries a room and stay dates ("2025-01-01" or RFC 3339)
type StayRequest struct {
	RoomID       string `json:"room_id" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
}

// UpdateStatusRequest sets a booking's status
type UpdateStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// PaymentRequest is a mock payment
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	var req StayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Room, check-in and check-out dates are required")
		return
	}
	roomID, checkIn, checkOut, ok := parseStay(c, req)
	if !ok {
		return
	}

	booking, err := h.bookingService.Create(userCtx.Principal(), services.CreateBookingInput{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		respondError(c, "create booking", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_created", "booking", booking.ID, map[string]interface{}{
		"room_id":     booking.RoomID,
		"total_price": booking.TotalPrice,
	})
	c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.List(userCtx.Principal())
	if err != nil {
		respondError(c, "list bookings", err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(userCtx.Principal(), id)
	if err != nil {
		respondError(c, "get booking", err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Status is required")
		return
	}

	booking, err := h.bookingService.UpdateStatus(userCtx.Principal(), id, req.Status)
	if err != nil {
		respondError(c, "update booking status", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_status_changed", "booking", booking.ID, map[string]interface{}{
		"status": booking.Status,
	})
	c.JSON(http.StatusOK, booking)
}

// ProcessPayment handles POST /api/v1/bookings/:id/payment
func (h *BookingHandler) ProcessPayment(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}

	// Body is optional, a malformed one is not
	var req PaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Invalid payment details")
			return
		}
	}

	booking, err := h.bookingService.ProcessPayment(userCtx.Principal(), id, req.PaymentMethod)
	if err != nil {
		respondError(c, "process payment", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_paid", "booking", booking.ID, map[string]interface{}{
		"transaction_id": booking.TransactionID,
		"amount":         booking.TotalPrice,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment processed successfully",
		"booking": booking,
	})
}

// CheckIn handles POST /api/v1/bookings/:id/checkin
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.lifecycleStep(c, "check in", "booking_checked_in", "Checked in successfully", h.bookingService.CheckIn)
}

// CheckOut handles POST /api/v1/bookings/:id/checkout
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.lifecycleStep(c, "check out", "booking_checked_out", "Checked out successfully", h.bookingService.CheckOut)
}

func (h *BookingHandler) lifecycleStep(
	c *gin.Context,
	operation, action, message string,
	step func(models.Principal, uuid.UUID) (*models.Booking, error),
) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}

	booking, err := step(userCtx.Principal(), id)
	if err != nil {
		respondError(c, operation, err)
		return
	}

	h.audit.entity(c, userCtx.UserID, action, "booking", booking.ID, nil)
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"booking": booking,
	})
}

// parseStay validates the room id and dates of a stay, answering 400 on failure
func parseStay(c *gin.Context, req StayRequest) (roomID uuid.UUID, checkIn, checkOut time.Time, ok bool) {
	roomID, err := parseUUID(req.RoomID)
	if err != nil {
		badRequest(c, "Invalid room ID")
		return
	}
	if checkIn, ok = parseDate(req.CheckInDate); !ok {
		badRequest(c, "Invalid check-in date")
		return
	}
	if checkOut, ok = parseDate(req.CheckOutDate); !ok {
		badRequest(c, "Invalid check-out date")
		return
	}
	return roomID, checkIn, checkOut, true
}
