package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
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

// asUser installs a fixed caller the way AuthMiddleware would
func asUser(userID uuid.UUID, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID:    userID,
			Email:     "caller@campus.edu",
			Role:      role,
			TokenID:   "test-jti",
			ExpiresAt: time.Now().Add(time.Hour),
		})
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

var roomCols = []string{
	"id", "room_number", "type", "price", "capacity", "amenities", "rating", "image_url",
	"is_available", "description", "university", "approval_status", "warden_id", "created_at", "updated_at",
}

func roomRow(id uuid.UUID, number string) *sqlmock.Rows {
	return sqlmock.NewRows(roomCols).AddRow(
		id.String(), number, "Single", 100.0, 1, "{wifi}", 0.0, models.DefaultRoomImageURL,
		true, "", "", "approved", nil, testNow, testNow,
	)
}

var bookingCols = []string{
	"id", "room_id", "user_id", "request_id", "check_in_date", "check_out_date", "status",
	"total_price", "payment_status", "payment_date", "payment_method", "transaction_id",
	"check_in_completed", "check_in_time", "check_out_completed", "check_out_time",
	"created_at", "updated_at",
}

func bookingRow(id, owner uuid.UUID, status models.BookingStatus, payment models.PaymentStatus) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(
		id.String(), uuid.NewString(), owner.String(), nil,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		string(status), 300.0, string(payment), nil, nil, nil,
		false, nil, false, nil, testNow, testNow,
	)
}
