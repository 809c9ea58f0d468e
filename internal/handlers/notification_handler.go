package handlers

import (
	"net/http"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's own notifications
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(userCtx.Principal())
	if err != nil {
		respondError(c, "list notifications", err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(userCtx.Principal())
	if err != nil {
		respondError(c, "count unread notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead handles PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(userCtx.Principal(), id); err != nil {
		respondError(c, "mark notification read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(userCtx.Principal())
	if err != nil {
		respondError(c, "mark all notifications read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": updated})
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notification")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(userCtx.Principal(), id); err != nil {
		respondError(c, "delete notification", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
