package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's single role
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleWarden Role = "WARDEN"
	RoleGuest  Role = "GUEST"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleWarden, RoleGuest:
		return true
	}
	return false
}

// User represents an account holder
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never expose
	Role         Role       `json:"role" db:"role"`
	Building     NullString `json:"building,omitempty" db:"building"`
	Organization NullString `json:"organization,omitempty" db:"organization"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated caller handed to every service operation
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller is an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsStaff reports whether the caller is an administrator or a warden
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleWarden
}

// RefreshToken represents a stored (hashed) JWT refresh token
type RefreshToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash  string     `json:"-" db:"token_hash"` // Never expose
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	LastUsedAt NullTime   `json:"last_used_at,omitempty" db:"last_used_at"`
	Revoked    bool       `json:"revoked" db:"revoked"`
	RevokedAt  NullTime   `json:"revoked_at,omitempty" db:"revoked_at"`
}

// IsUsable reports whether the token can still be exchanged
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
