package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// AccessTokenCookie is the cookie carrying the access token
const AccessTokenCookie = "accessToken"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID    uuid.UUID   `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	TokenID   string      `json:"-"`
	ExpiresAt time.Time   `json:"-"`
}

// Principal returns the caller as the services see it
func (u UserContext) Principal() models.Principal {
	return models.Principal{UserID: u.UserID, Role: u.Role}
}

// RevocationChecker reports whether an access token id has been revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates the access token from the accessToken cookie or
// the Authorization header
func AuthMiddleware(jwtService *jwt.Service, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			log.Printf("AUTH FAILED: Missing token - Path: %s, IP: %s", c.Request.URL.Path, c.ClientIP())
			abortUnauthorized(c, "unauthorized", "Authentication required", "MISSING_AUTH_TOKEN")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "token_expired", "Access token has expired. Please refresh your token.", "TOKEN_EXPIRED")
			} else {
				log.Printf("AUTH FAILED: Invalid token - Path: %s, IP: %s, Error: %v", c.Request.URL.Path, c.ClientIP(), err)
				abortUnauthorized(c, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail closed
				log.Printf("ERROR: Token denylist lookup failed: %v", err)
				abortUnauthorized(c, "invalid_token", "Invalid access token", "INVALID_TOKEN")
				return
			}
			if isRevoked {
				abortUnauthorized(c, "invalid_token", "Access token has been revoked", "INVALID_TOKEN")
				return
			}
		}

		userContext := UserContext{
			UserID:  claims.UserID,
			Email:   claims.Email,
			Role:    models.Role(claims.Role),
			TokenID: claims.ID,
		}
		if claims.ExpiresAt != nil {
			userContext.ExpiresAt = claims.ExpiresAt.Time
		}

		c.Set(UserContextKey, userContext)
		c.Next()
	}
}

// OptionalAuth attaches the user context when a valid, unrevoked token is
// present and lets anonymous requests through
func OptionalAuth(jwtService *jwt.Service, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := extractToken(c); ok {
			if claims, err := jwtService.ValidateAccessToken(tokenString); err == nil && !isRevoked(c, revoked, claims.ID) {
				c.Set(UserContextKey, UserContext{
					UserID:  claims.UserID,
					Email:   claims.Email,
					Role:    models.Role(claims.Role),
					TokenID: claims.ID,
				})
			}
		}
		c.Next()
	}
}

// A failed lookup counts as revoked
func isRevoked(c *gin.Context, revoked RevocationChecker, jti string) bool {
	if revoked == nil {
		return false
	}
	isRevoked, err := revoked.IsRevoked(c.Request.Context(), jti)
	if err != nil {
		log.Printf("ERROR: Token denylist lookup failed: %v", err)
		return true
	}
	return isRevoked
}

func extractToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, errCode, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
}

// RequireRole creates a middleware that checks if user has one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}
