package handlers

import (
	"net/http"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
)

// BookingRequestHandler handles guest requests and admin decisions
type BookingRequestHandler struct {
	requestService *services.BookingRequestService
	audit          auditor
}

// NewBookingRequestHandler creates a new booking request handler
func NewBookingRequestHandler(requestService *services.BookingRequestService, auditService *services.AuditService) *BookingRequestHandler {
	return &BookingRequestHandler{
		requestService: requestService,
		audit:          auditor{service: auditService},
	}
}

// CreateBookingRequestRequest is a guest's request for a stay
type CreateBookingRequestRequest struct {
	StayRequest
	Message string `json:"message"`
}

// CreateRequest handles POST /api/v1/booking-requests
func (h *BookingRequestHandler) CreateRequest(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	var req CreateBookingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Room, check-in and check-out dates are required")
		return
	}
	roomID, checkIn, checkOut, ok := parseStay(c, req.StayRequest)
	if !ok {
		return
	}

	created, err := h.requestService.Create(userCtx.Principal(), services.CreateRequestInput{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Message:  req.Message,
	})
	if err != nil {
		respondError(c, "create booking request", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListRequests handles GET /api/v1/booking-requests (admin)
// Query: status (pending, approved, rejected); rejected requests are hidden by default
func (h *BookingRequestHandler) ListRequests(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	var status *models.RequestStatus
	if v := c.Query("status"); v != "" {
		s := models.RequestStatus(v)
		status = &s
	}

	requests, err := h.requestService.List(userCtx.Principal(), status)
	if err != nil {
		respondError(c, "list booking requests", err)
		return
	}

	c.JSON(http.StatusOK, nonNilRequests(requests))
}

// ListMyRequests handles GET /api/v1/booking-requests/my-requests
func (h *BookingRequestHandler) ListMyRequests(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListMine(userCtx.Principal())
	if err != nil {
		respondError(c, "list own booking requests", err)
		return
	}

	c.JSON(http.StatusOK, nonNilRequests(requests))
}

// ApproveRequest handles POST /api/v1/booking-requests/:id/approve
func (h *BookingRequestHandler) ApproveRequest(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}

	result, err := h.requestService.Approve(userCtx.Principal(), id)
	if err != nil {
		respondError(c, "approve booking request", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_request_approved", "booking_request", id, map[string]interface{}{
		"booking_id": result.Booking.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking request approved",
		"booking": result.Booking,
		"request": result.Request,
	})
}

// RejectRequest handles POST /api/v1/booking-requests/:id/reject
func (h *BookingRequestHandler) RejectRequest(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}

	rejected, err := h.requestService.Reject(userCtx.Principal(), id)
	if err != nil {
		respondError(c, "reject booking request", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_request_rejected", "booking_request", id, nil)
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking request rejected",
		"request": rejected,
	})
}

// DeleteRequest handles DELETE /api/v1/booking-requests/:id
func (h *BookingRequestHandler) DeleteRequest(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}

	if err := h.requestService.Delete(userCtx.Principal(), id); err != nil {
		respondError(c, "delete booking request", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "booking_request_deleted", "booking_request", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Booking request deleted"})
}

func nonNilRequests(requests []models.BookingRequest) []models.BookingRequest {
	if requests == nil {
		return []models.BookingRequest{}
	}
	return requests
}
