package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "building", "organization", "created_at", "updated_at"}

type authTestSetup struct {
	handler  *AuthHandler
	mock     sqlmock.Sqlmock
	denylist *services.MemoryDenylist
}

func setupAuthHandler(t *testing.T, environment string, withAudit bool) authTestSetup {
	db, mock := setupTestDB(t)
	jwtService := jwt.NewService("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	denylist := services.NewMemoryDenylist()
	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwtService,
		denylist,
		validator.New(),
		bcrypt.MinCost,
		testLogger(),
	)

	var auditService *services.AuditService
	if withAudit {
		auditService = services.NewAuditService(db, true)
	}

	cfg := &config.Config{Server: config.ServerConfig{Environment: environment}}
	return authTestSetup{
		handler:  NewAuthHandler(authService, auditService, cfg),
		mock:     mock,
		denylist: denylist,
	}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestRegister_SetsCookies(t *testing.T) {
	s := setupAuthHandler(t, "production", false)
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).WithArgs("ada@stanford.edu").
		WillReturnRows(sqlmock.NewRows(userCols))
	s.mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 1))

	router := newTestRouter()
	router.POST("/auth/register", s.handler.Register)

	w := performJSON(router, "POST", "/auth/register", RegisterRequest{
		Name:     "Ada",
		Email:    "ada@stanford.edu",
		Password: "s3cret-pass",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"GUEST"`)
	assert.NotContains(t, w.Body.String(), "password_hash")

	cookies := w.Result().Cookies()
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := cookieByName(cookies, name)
		require.NotNil(t, cookie, name)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	}
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestRegister_ShortPassword(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	router := newTestRouter()
	router.POST("/auth/register", s.handler.Register)

	w := performJSON(router, "POST", "/auth/register", RegisterRequest{
		Name:     "Ada",
		Email:    "ada@stanford.edu",
		Password: "12345",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestLogin_InvalidCredentialsAudited(t *testing.T) {
	s := setupAuthHandler(t, "development", true)
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnRows(sqlmock.NewRows(userCols))
	s.mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(nil, "login_failed", "user", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := newTestRouter()
	router.POST("/auth/login", s.handler.Login)

	w := performJSON(router, "POST", "/auth/login", LoginRequest{Email: "ghost@campus.edu", Password: "whatever"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeError(t, w).Message)
	assert.Nil(t, cookieByName(w.Result().Cookies(), middleware.AccessTokenCookie))
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestLogin_AuditFailureDoesNotFailRequest(t *testing.T) {
	s := setupAuthHandler(t, "development", true)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New()
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnRows(sqlmock.NewRows(userCols).
		AddRow(userID.String(), "Ada", "ada@campus.edu", string(hash), "GUEST", nil, nil, testNow, testNow))
	s.mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(assert.AnError)

	router := newTestRouter()
	router.POST("/auth/login", s.handler.Login)

	w := performJSON(router, "POST", "/auth/login", LoginRequest{Email: "ada@campus.edu", Password: "s3cret-pass"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestRefreshToken_MissingClearsCookies(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	router := newTestRouter()
	router.POST("/auth/refresh", s.handler.RefreshToken)

	w := performJSON(router, "POST", "/auth/refresh", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_REFRESH_TOKEN", decodeError(t, w).Code)

	cookie := cookieByName(w.Result().Cookies(), RefreshTokenCookie)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	router := newTestRouter()
	router.POST("/auth/refresh", s.handler.RefreshToken)

	w := performJSON(router, "POST", "/auth/refresh", RefreshTokenRequest{RefreshToken: "invalid.token.here"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired refresh token", decodeError(t, w).Message)
}

func TestLogout_RevokesTokens(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	s.mock.ExpectExec(`UPDATE refresh_tokens`).
		WithArgs(database.HashToken("some-refresh-token")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := newTestRouter()
	router.POST("/auth/logout", asUser(uuid.New(), models.RoleGuest), s.handler.Logout)

	w := performJSON(router, "POST", "/auth/logout", RefreshTokenRequest{RefreshToken: "some-refresh-token"})

	assert.Equal(t, http.StatusOK, w.Code)
	revoked, err := s.denylist.IsRevoked(context.Background(), "test-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	cookie := cookieByName(w.Result().Cookies(), middleware.AccessTokenCookie)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestMe(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	userID := uuid.New()
	s.mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(userID.String(), "Ada", "ada@campus.edu", "hash", "WARDEN", "North Hall", "Campus", testNow, testNow))

	router := newTestRouter()
	router.GET("/auth/me", asUser(userID, models.RoleWarden), s.handler.Me)

	w := performJSON(router, "GET", "/auth/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"building":"North Hall"`)
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestMe_WithoutUserContext(t *testing.T) {
	s := setupAuthHandler(t, "development", false)
	router := newTestRouter()
	router.GET("/auth/me", s.handler.Me)

	w := performJSON(router, "GET", "/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_USER_CONTEXT", decodeError(t, w).Code)
}
