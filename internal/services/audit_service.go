package services

import (
	"encoding/json"
	"fmt"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/utils"
	"github.com/google/uuid"
)

// AuditService writes security and booking events to audit_logs
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service accepts
// every event and writes nothing.
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // nil for pre-authentication events
	Action     string     // e.g. "login", "booking_request_approved"
	EntityType string     // e.g. "user", "booking", "booking_request"
	EntityID   *uuid.UUID
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogRegister logs a new account
func (s *AuditService) LogRegister(userID uuid.UUID, email, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "register",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"email": email},
	})
}

// LogLogin logs a successful login
func (s *AuditService) LogLogin(userID uuid.UUID, email, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "login",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"email": email},
	})
}

// LogLoginFailed logs a rejected login attempt
func (s *AuditService) LogLoginFailed(email, ipAddress, userAgent, reason string) error {
	return s.logEvent(AuditEvent{
		Action:     "login_failed",
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"email": email, "reason": reason},
	})
}

// LogLogout logs a logout
func (s *AuditService) LogLogout(userID uuid.UUID, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// LogTokenRefresh logs a refresh token exchange
func (s *AuditService) LogTokenRefresh(userID *uuid.UUID, ipAddress, userAgent string, success bool) error {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}
	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "token",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"success": success},
	})
}

// LogRateLimitViolation logs a request refused by the limiter
func (s *AuditService) LogRateLimitViolation(path, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		Action:     "rate_limit_violation",
		EntityType: "rate_limit",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"path": path},
	})
}

// LogEntityAction logs a state change on a booking, request or room
func (s *AuditService) LogEntityAction(actorID uuid.UUID, action, entityType string, entityID uuid.UUID, ipAddress, userAgent string, details map[string]interface{}) error {
	return s.logEvent(AuditEvent{
		UserID:     &actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	if !s.enabled {
		return nil
	}

	details := event.Details
	if details == nil {
		details = make(map[string]interface{})
	}
	details["device_info"] = utils.ParseUserAgent(event.UserAgent)

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
