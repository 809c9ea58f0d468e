package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorShape struct {
	status int
	error  string
	code   string
}

var errorShapes = map[services.ErrorKind]errorShape{
	services.KindValidation:     {http.StatusBadRequest, "validation_error", "VALIDATION_ERROR"},
	services.KindAuthentication: {http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED"},
	services.KindAuthorization:  {http.StatusForbidden, "forbidden", "FORBIDDEN"},
	services.KindNotFound:       {http.StatusNotFound, "not_found", "NOT_FOUND"},
	services.KindConflict:       {http.StatusConflict, "conflict", "CONFLICT"},
	services.KindRateLimited:    {http.StatusTooManyRequests, "rate_limit_exceeded", "RATE_LIMITED"},
}

// respondError writes err using its service kind. Errors that are not
// service errors are logged and reported as a generic 500.
func respondError(c *gin.Context, operation string, err error) {
	shape, ok := errorShapes[services.KindOf(err)]
	if !ok {
		log.Printf("ERROR: %s failed: %v", operation, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong. Please try again later.",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(shape.status, ErrorResponse{
		Error:   shape.error,
		Message: err.Error(),
		Code:    shape.code,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Code:    "VALIDATION_ERROR",
	})
}

// pathID parses the :id route parameter, answering 400 when malformed
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the caller set by the auth middleware
func principal(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return middleware.UserContext{}, false
	}
	return userCtx, true
}

// parseDate accepts a calendar date ("2025-01-04") or an RFC 3339 timestamp.
// Calendar dates are read as midnight UTC.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}
