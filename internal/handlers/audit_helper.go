package handlers

import (
	"log"

	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/CosmicMagnetar/unilodge/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// logAuditError is a helper to log audit service errors without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		log.Printf("AUDIT ERROR [%s]: %v", operation, err)
	}
}

// auditor wraps the audit service so a write failure never fails the request.
// A nil auditor records nothing.
type auditor struct {
	service *services.AuditService
}

func (a auditor) register(c *gin.Context, userID uuid.UUID, email string) {
	if a.service == nil {
		return
	}
	logAuditError("LogRegister", a.service.LogRegister(userID, email, utils.GetRealIP(c), utils.GetUserAgent(c)))
}

func (a auditor) login(c *gin.Context, userID uuid.UUID, email string) {
	if a.service == nil {
		return
	}
	logAuditError("LogLogin", a.service.LogLogin(userID, email, utils.GetRealIP(c), utils.GetUserAgent(c)))
}

func (a auditor) loginFailed(c *gin.Context, email, reason string) {
	if a.service == nil {
		return
	}
	logAuditError("LogLoginFailed", a.service.LogLoginFailed(email, utils.GetRealIP(c), utils.GetUserAgent(c), reason))
}

func (a auditor) logout(c *gin.Context, userID uuid.UUID) {
	if a.service == nil {
		return
	}
	logAuditError("LogLogout", a.service.LogLogout(userID, utils.GetRealIP(c), utils.GetUserAgent(c)))
}

func (a auditor) tokenRefresh(c *gin.Context, userID *uuid.UUID, success bool) {
	if a.service == nil {
		return
	}
	logAuditError("LogTokenRefresh", a.service.LogTokenRefresh(userID, utils.GetRealIP(c), utils.GetUserAgent(c), success))
}

func (a auditor) rateLimitViolation(c *gin.Context) {
	if a.service == nil {
		return
	}
	logAuditError("LogRateLimitViolation", a.service.LogRateLimitViolation(c.FullPath(), utils.GetRealIP(c), utils.GetUserAgent(c)))
}

func (a auditor) entity(c *gin.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) {
	if a.service == nil {
		return
	}
	logAuditError("LogEntityAction", a.service.LogEntityAction(actorID, action, entityType, entityID, utils.GetRealIP(c), utils.GetUserAgent(c), details))
}

// RateLimitAuditor returns a callback for RateLimiter.Middleware that records
// each refusal
func RateLimitAuditor(service *services.AuditService) func(c *gin.Context) {
	return auditor{service: service}.rateLimitViolation
}
