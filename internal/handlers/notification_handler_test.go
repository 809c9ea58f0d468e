package handlers

import (
	"net/http"
	"testing"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupNotificationRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	service := services.NewNotificationService(database.NewNotificationRepository(db), 50, testLogger())
	handler := NewNotificationHandler(service)

	router := newTestRouter()
	notifications := router.Group("/notifications", asUser(userID, models.RoleGuest))
	notifications.GET("", handler.ListNotifications)
	notifications.GET("/unread-count", handler.UnreadCount)
	notifications.PATCH("/read-all", handler.MarkAllRead)
	notifications.PATCH("/:id/read", handler.MarkRead)
	notifications.DELETE("/:id", handler.DeleteNotification)
	return router, mock
}

func TestListNotifications_EmptyIsArray(t *testing.T) {
	userID := uuid.New()
	router, mock := setupNotificationRouter(t, userID)
	mock.ExpectQuery(`FROM notifications`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := performJSON(router, "GET", "/notifications", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCount(t *testing.T) {
	userID := uuid.New()
	router, mock := setupNotificationRouter(t, userID)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	w := performJSON(router, "GET", "/notifications/unread-count", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestMarkRead_ForeignNotificationLooksMissing(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	router, mock := setupNotificationRouter(t, userID)
	mock.ExpectExec(`UPDATE notifications SET read = TRUE WHERE id = \$1 AND user_id = \$2`).
		WithArgs(notificationID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := performJSON(router, "PATCH", "/notifications/"+notificationID.String()+"/read", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Notification not found", decodeError(t, w).Message)
}

func TestMarkAllRead(t *testing.T) {
	userID := uuid.New()
	router, mock := setupNotificationRouter(t, userID)
	mock.ExpectExec(`UPDATE notifications SET read = TRUE WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 4))

	w := performJSON(router, "PATCH", "/notifications/read-all", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":4`)
}

func TestDeleteNotification(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	router, mock := setupNotificationRouter(t, userID)
	mock.ExpectExec(`DELETE FROM notifications WHERE id = \$1 AND user_id = \$2`).
		WithArgs(notificationID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performJSON(router, "DELETE", "/notifications/"+notificationID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
