package services

import (
	"context"
	"testing"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-pass"

var userCols = []string{"id", "name", "email", "password_hash", "role", "building", "organization", "created_at", "updated_at"}

type authFixture struct {
	svc      *AuthService
	mock     sqlmock.Sqlmock
	jwt      *jwt.Service
	denylist *MemoryDenylist
}

func newAuthFixture(t *testing.T) authFixture {
	db, mock := newMockDB(t)
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	denylist := NewMemoryDenylist()
	svc := NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwtService,
		denylist,
		validator.New(),
		bcrypt.MinCost,
		testLogger(),
	)
	return authFixture{svc: svc, mock: mock, jwt: jwtService, denylist: denylist}
}

func userRows(t *testing.T, id uuid.UUID, email string, role models.Role) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows(userCols).
		AddRow(id.String(), "Ada Lovelace", email, string(hash), string(role), nil, "Campus", fixedNow, fixedNow)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("Creates Guest And Issues Tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(`FROM users WHERE email = \$1`).WithArgs("ada@campus.edu").
			WillReturnRows(sqlmock.NewRows(userCols))
		f.mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "203.0.113.9", "curl/8.0", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := f.svc.Register(
			RegisterInput{Name: " Ada ", Email: "Ada@Campus.edu", Password: testPassword},
			ClientInfo{IPAddress: "203.0.113.9", UserAgent: "curl/8.0"},
		)
		require.NoError(t, err)
		assert.Equal(t, models.RoleGuest, result.User.Role)
		assert.Equal(t, "Ada", result.User.Name)
		assert.Equal(t, "Campus", result.User.Organization.String)
		assert.NotEqual(t, testPassword, result.User.PasswordHash)

		claims, err := f.jwt.ValidateAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, claims.UserID)
		assert.Equal(t, "GUEST", claims.Role)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Email Taken", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WillReturnRows(userRows(t, uuid.New(), "ada@campus.edu", models.RoleGuest))

		_, err := f.svc.Register(RegisterInput{Name: "Ada", Email: "ada@campus.edu", Password: testPassword}, ClientInfo{})
		assertKind(t, err, KindConflict, "User already exists")
	})

	t.Run("Invalid Input", func(t *testing.T) {
		f := newAuthFixture(t)
		tests := []struct {
			name    string
			input   RegisterInput
			message string
		}{
			{"missing name", RegisterInput{Email: "a@b.edu", Password: testPassword}, "Name is required"},
			{"bad email", RegisterInput{Name: "A", Email: "nope", Password: testPassword}, "Please provide a valid email address"},
			{"short password", RegisterInput{Name: "A", Email: "a@b.edu", Password: "123"}, "Password must be at least 6 characters"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.Register(tt.input, ClientInfo{})
				assertKind(t, err, KindValidation, tt.message)
			})
		}
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestAuthService_CreateUser_Admin(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnRows(sqlmock.NewRows(userCols))
	f.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Root", "root@unilodge.io", sqlmock.AnyArg(), "ADMIN",
			nil, "Unilodge", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := f.svc.CreateUser(RegisterInput{Name: "Root", Email: "root@unilodge.io", Password: testPassword}, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthService_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture(t)
		userID := uuid.New()
		f.mock.ExpectQuery(`FROM users WHERE email = \$1`).WithArgs("ada@campus.edu").
			WillReturnRows(userRows(t, userID, "ada@campus.edu", models.RoleWarden))
		f.mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := f.svc.Login(" ADA@campus.edu", testPassword, ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, userID, result.User.ID)
		assert.Equal(t, models.RoleWarden, result.User.Role)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WillReturnRows(userRows(t, uuid.New(), "ada@campus.edu", models.RoleGuest))

		_, err := f.svc.Login("ada@campus.edu", "wrong-password", ClientInfo{})
		assertKind(t, err, KindAuthentication, "Invalid credentials")
	})

	t.Run("Unknown Email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnRows(sqlmock.NewRows(userCols))

		_, err := f.svc.Login("ghost@campus.edu", testPassword, ClientInfo{})
		assertKind(t, err, KindAuthentication, "Invalid credentials")
	})
}

func refreshTokenRows(userID uuid.UUID, token string, revoked bool, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "token_hash", "ip_address", "user_agent", "created_at",
		"expires_at", "last_used_at", "revoked", "revoked_at",
	}).AddRow(uuid.NewString(), userID.String(), database.HashToken(token), nil, nil, fixedNow,
		expiresAt, nil, revoked, nil)
}

func TestAuthService_Refresh(t *testing.T) {
	userID := uuid.New()

	t.Run("Rotates Token", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateRefreshToken(userID, "ada@campus.edu", "GUEST")
		require.NoError(t, err)

		f.mock.ExpectQuery(`FROM refresh_tokens\s+WHERE token_hash = \$1`).WithArgs(database.HashToken(token)).
			WillReturnRows(refreshTokenRows(userID, token, false, time.Now().Add(time.Hour)))
		f.mock.ExpectExec(`UPDATE refresh_tokens\s+SET revoked = TRUE`).WithArgs(database.HashToken(token)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(userID).
			WillReturnRows(userRows(t, userID, "ada@campus.edu", models.RoleGuest))
		f.mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := f.svc.Refresh(token, ClientInfo{})
		require.NoError(t, err)
		assert.NotEqual(t, token, result.Tokens.RefreshToken)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Replayed Token", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateRefreshToken(userID, "ada@campus.edu", "GUEST")
		require.NoError(t, err)

		f.mock.ExpectQuery(`FROM refresh_tokens`).
			WillReturnRows(refreshTokenRows(userID, token, false, time.Now().Add(time.Hour)))
		f.mock.ExpectExec(`UPDATE refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err = f.svc.Refresh(token, ClientInfo{})
		assertKind(t, err, KindAuthentication, "Invalid or expired refresh token")
	})

	t.Run("Revoked Token", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateRefreshToken(userID, "ada@campus.edu", "GUEST")
		require.NoError(t, err)

		f.mock.ExpectQuery(`FROM refresh_tokens`).
			WillReturnRows(refreshTokenRows(userID, token, true, time.Now().Add(time.Hour)))

		_, err = f.svc.Refresh(token, ClientInfo{})
		assertKind(t, err, KindAuthentication, "Invalid or expired refresh token")
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Access Token Presented", func(t *testing.T) {
		f := newAuthFixture(t)
		access, err := f.jwt.GenerateAccessToken(userID, "ada@campus.edu", "GUEST")
		require.NoError(t, err)

		_, err = f.svc.Refresh(access, ClientInfo{})
		assertKind(t, err, KindAuthentication, "Invalid or expired refresh token")
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Missing Token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Refresh("", ClientInfo{})
		assertKind(t, err, KindAuthentication, "Refresh token is required")
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectExec(`UPDATE refresh_tokens`).WithArgs(database.HashToken("refresh")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := f.svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute), "refresh")
	require.NoError(t, err)

	revoked, err := f.denylist.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectQuery(`FROM users WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := f.svc.Me(guest())
	assertKind(t, err, KindNotFound, "User not found")
}

func TestAuthService_CleanupRefreshTokens(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.now = func() time.Time { return fixedNow }
	f.mock.ExpectExec(`DELETE FROM refresh_tokens`).WithArgs(fixedNow.Add(-24 * time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 5))

	deleted, err := f.svc.CleanupRefreshTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}
