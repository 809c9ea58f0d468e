package handlers

import (
	"net/http"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/CosmicMagnetar/unilodge/internal/utils"
	"github.com/gin-gonic/gin"
)

// RefreshTokenCookie is the cookie carrying the refresh token
const RefreshTokenCookie = "refreshToken"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	audit       auditor
	config      *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		audit:       auditor{service: auditService},
		config:      cfg,
	}
}

// RegisterRequest represents a self-service signup
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries a refresh token for clients without cookies
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned after register, login and refresh
type AuthResponse struct {
	Message      string       `json:"message"`
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in_seconds"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Register(services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, clientInfo(c))
	if err != nil {
		respondError(c, "register", err)
		return
	}

	h.audit.register(c, result.User.ID, result.User.Email)
	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusCreated, h.authResponse("Registration successful", result))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password, clientInfo(c))
	if err != nil {
		if services.KindOf(err) == services.KindAuthentication {
			h.audit.loginFailed(c, req.Email, err.Error())
		}
		respondError(c, "login", err)
		return
	}

	h.audit.login(c, result.User.ID, result.User.Email)
	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusOK, h.authResponse("Login successful", result))
}

// RefreshToken handles POST /api/v1/auth/refresh. The token comes from the
// refresh cookie, or from the JSON body when no cookie is sent.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(RefreshTokenCookie)
	if token == "" {
		var req RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	if token == "" {
		h.clearAuthCookies(c)
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Refresh token required",
			Code:    "MISSING_REFRESH_TOKEN",
		})
		return
	}

	result, err := h.authService.Refresh(token, clientInfo(c))
	if err != nil {
		h.audit.tokenRefresh(c, nil, false)
		h.clearAuthCookies(c)
		respondError(c, "refresh token", err)
		return
	}

	h.audit.tokenRefresh(c, &result.User.ID, true)
	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusOK, h.authResponse("Token refreshed", result))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	refreshToken, _ := c.Cookie(RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}

	if err := h.authService.Logout(c.Request.Context(), userCtx.TokenID, userCtx.ExpiresAt, refreshToken); err != nil {
		respondError(c, "logout", err)
		return
	}

	h.audit.logout(c, userCtx.UserID)
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(userCtx.Principal())
	if err != nil {
		respondError(c, "get current user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) authResponse(message string, result *services.AuthResult) AuthResponse {
	return AuthResponse{
		Message:      message,
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    int(time.Until(result.Tokens.AccessExpiresAt).Seconds()),
	}
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, tokens services.AuthTokens) {
	secure := h.config.Server.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, cookieMaxAge(tokens.AccessExpiresAt), "/", "", secure, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, tokens.RefreshToken, cookieMaxAge(tokens.RefreshExpiresAt), "/", "", secure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	secure := h.config.Server.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func cookieMaxAge(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}
