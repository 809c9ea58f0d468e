package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidRefreshToken = "Invalid or expired refresh token"
	msgUserExists          = "User already exists"
)

// AuthService handles accounts, password login and token rotation
type AuthService struct {
	users         *database.UserRepository
	refreshTokens *database.RefreshTokenRepository
	jwtService    *jwt.Service
	denylist      TokenDenylist
	validator     *validator.Validator
	bcryptCost    int
	logger        *logrus.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *database.UserRepository,
	refreshTokens *database.RefreshTokenRepository,
	jwtService *jwt.Service,
	denylist TokenDenylist,
	v *validator.Validator,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		jwtService:    jwtService,
		denylist:      denylist,
		validator:     v,
		bcryptCost:    bcryptCost,
		logger:        logger,
		now:           time.Now,
	}
}

// ClientInfo identifies the device a token is issued to
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthTokens is a freshly issued token pair
type AuthTokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AuthResult is an authenticated user with new tokens
type AuthResult struct {
	User   *models.User
	Tokens AuthTokens
}

// RegisterInput is a self-service signup
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a GUEST account and signs it in
func (s *AuthService) Register(in RegisterInput, client ClientInfo) (*AuthResult, error) {
	user, err := s.CreateUser(in, models.RoleGuest)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user, client)
}

// CreateUser validates input and stores a user with role. Used by Register
// and by the operator CLI that seeds administrators.
func (s *AuthService) CreateUser(in RegisterInput, role models.Role) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError("Name is required")
	}
	email, err := s.validator.Email(in.Email)
	if err != nil {
		return nil, ValidationError("Please provide a valid email address")
	}
	if err := s.validator.Password(in.Password); err != nil {
		return nil, ValidationError("Password must be at least %d characters", validator.MinPasswordLength)
	}
	if !role.IsValid() {
		return nil, ValidationError("Invalid role")
	}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ConflictError(msgUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Organization: models.NewNullString(s.validator.OrganizationFromEmail(email)),
	}
	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ConflictError(msgUserExists)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User created")

	return user, nil
}

// Login checks email and password and issues tokens
func (s *AuthService) Login(email, password string, client ClientInfo) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(s.validator.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, AuthenticationError(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, AuthenticationError(msgInvalidCredentials)
	}
	return s.issueTokens(user, client)
}

// Refresh exchanges a refresh token for a new pair. Each refresh token is
// accepted once; replaying it fails.
func (s *AuthService) Refresh(refreshToken string, client ClientInfo) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, AuthenticationError("Refresh token is required")
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, AuthenticationError(msgInvalidRefreshToken)
	}

	stored, err := s.refreshTokens.GetRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.IsUsable(s.now()) || stored.UserID != claims.UserID {
		return nil, AuthenticationError(msgInvalidRefreshToken)
	}

	if err := s.refreshTokens.RevokeRefreshToken(refreshToken); err != nil {
		if errors.Is(err, database.ErrConcurrentUpdate) {
			return nil, AuthenticationError(msgInvalidRefreshToken)
		}
		return nil, err
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, AuthenticationError(msgInvalidRefreshToken)
	}

	return s.issueTokens(user, client)
}

// Logout revokes the refresh token, if any, and denylists the access token
// until it would have expired
func (s *AuthService) Logout(ctx context.Context, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error {
	if refreshToken != "" {
		err := s.refreshTokens.RevokeRefreshToken(refreshToken)
		if err != nil && !errors.Is(err, database.ErrConcurrentUpdate) {
			return err
		}
	}
	if accessTokenID == "" {
		return nil
	}
	return s.denylist.Revoke(ctx, accessTokenID, accessExpiresAt.Sub(s.now()))
}

// Me returns the caller's account
func (s *AuthService) Me(p models.Principal) (*models.User, error) {
	user, err := s.users.GetUserByID(p.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFoundError("User not found")
	}
	return user, nil
}

// CleanupRefreshTokens deletes tokens that expired or were revoked more than
// a day ago
func (s *AuthService) CleanupRefreshTokens() (int64, error) {
	return s.refreshTokens.DeleteExpiredTokens(s.now().Add(-24 * time.Hour))
}

func (s *AuthService) issueTokens(user *models.User, client ClientInfo) (*AuthResult, error) {
	role := string(user.Role)
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, role)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tokens := AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(s.jwtService.AccessTokenExpiry()),
		RefreshExpiresAt: now.Add(s.jwtService.RefreshTokenExpiry()),
	}

	if err := s.refreshTokens.StoreRefreshToken(user.ID, refreshToken, client.IPAddress, client.UserAgent, tokens.RefreshExpiresAt); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}
