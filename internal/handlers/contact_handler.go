package handlers

import (
	"net/http"

	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactHandler handles the public contact form and its admin inbox
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactStatusRequest sets a message's handling status
type ContactStatusRequest struct {
	Status models.ContactStatus `json:"status" binding:"required"`
}

// Submit handles POST /api/v1/contact. Signed-in senders are linked to
// their account.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	var userID *uuid.UUID
	if userCtx, ok := middleware.GetUserContext(c); ok {
		userID = &userCtx.UserID
	}

	contact, err := h.contactService.Submit(req, userID)
	if err != nil {
		respondError(c, "submit contact message", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message received. We will get back to you soon.",
		"contact": contact,
	})
}

// ListMessages handles GET /api/v1/contact (admin)
func (h *ContactHandler) ListMessages(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	var status *models.ContactStatus
	if v := c.Query("status"); v != "" {
		s := models.ContactStatus(v)
		status = &s
	}

	messages, err := h.contactService.List(userCtx.Principal(), status)
	if err != nil {
		respondError(c, "list contact messages", err)
		return
	}
	if messages == nil {
		messages = []models.Contact{}
	}

	c.JSON(http.StatusOK, messages)
}

// UpdateStatus handles PATCH /api/v1/contact/:id/status (admin)
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "contact message")
	if !ok {
		return
	}

	var req ContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Status is required")
		return
	}

	if err := h.contactService.UpdateStatus(userCtx.Principal(), id, req.Status); err != nil {
		respondError(c, "update contact status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
