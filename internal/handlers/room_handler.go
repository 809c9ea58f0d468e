package handlers

import (
	"net/http"
	"strconv"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
)

// RoomHandler handles room inventory and review endpoints
type RoomHandler struct {
	roomService   *services.RoomService
	reviewService *services.ReviewService
	audit         auditor
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *services.RoomService, reviewService *services.ReviewService, auditService *services.AuditService) *RoomHandler {
	return &RoomHandler{
		roomService:   roomService,
		reviewService: reviewService,
		audit:         auditor{service: auditService},
	}
}

// ApprovalRequest sets a room's listing status
type ApprovalRequest struct {
	Status models.ApprovalStatus `json:"status" binding:"required"`
}

// CreateReviewRequest is a review of a completed stay
type CreateReviewRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ListRooms handles GET /api/v1/rooms
// Query: type, minPrice, maxPrice, available, approvalStatus
func (h *RoomHandler) ListRooms(c *gin.Context) {
	filter, ok := roomFilterFromQuery(c)
	if !ok {
		return
	}

	rooms, err := h.roomService.List(filter)
	if err != nil {
		respondError(c, "list rooms", err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}

	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := pathID(c, "room")
	if !ok {
		return
	}

	room, err := h.roomService.Get(id)
	if err != nil {
		respondError(c, "get room", err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	var req services.CreateRoomInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	room, err := h.roomService.Create(userCtx.Principal(), req)
	if err != nil {
		respondError(c, "create room", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "room_created", "room", room.ID, map[string]interface{}{
		"room_number":     room.RoomNumber,
		"approval_status": room.ApprovalStatus,
	})
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "room")
	if !ok {
		return
	}

	var req models.RoomUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	room, err := h.roomService.Update(userCtx.Principal(), id, req)
	if err != nil {
		respondError(c, "update room", err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "room")
	if !ok {
		return
	}

	if err := h.roomService.Delete(userCtx.Principal(), id); err != nil {
		respondError(c, "delete room", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "room_deleted", "room", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// SetApproval handles PATCH /api/v1/rooms/:id/approval
func (h *RoomHandler) SetApproval(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "room")
	if !ok {
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Status is required")
		return
	}

	room, err := h.roomService.SetApproval(userCtx.Principal(), id, req.Status)
	if err != nil {
		respondError(c, "set room approval", err)
		return
	}

	h.audit.entity(c, userCtx.UserID, "room_"+string(room.ApprovalStatus), "room", room.ID, nil)
	c.JSON(http.StatusOK, room)
}

// CreateReview handles POST /api/v1/rooms/:id/reviews
func (h *RoomHandler) CreateReview(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Booking ID is required")
		return
	}
	bookingID, err := parseUUID(req.BookingID)
	if err != nil {
		badRequest(c, "Invalid booking ID")
		return
	}

	review, err := h.reviewService.Create(userCtx.Principal(), services.CreateReviewInput{
		RoomID:    roomID,
		BookingID: bookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, "create review", err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func roomFilterFromQuery(c *gin.Context) (models.RoomFilter, bool) {
	var filter models.RoomFilter

	if v := c.Query("type"); v != "" {
		t := models.RoomType(v)
		filter.Type = &t
	}
	if v := c.Query("approvalStatus"); v != "" {
		s := models.ApprovalStatus(v)
		filter.ApprovalStatus = &s
	}
	for _, q := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "Invalid "+q.name)
			return filter, false
		}
		*q.dst = &price
	}
	if v := c.Query("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "Invalid available flag")
			return filter, false
		}
		filter.Available = &available
	}

	return filter, true
}
