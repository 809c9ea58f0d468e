package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		db: db,
	}
}

// HashToken creates a SHA-256 hash of the token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// StoreRefreshToken stores the hash of a refresh token
func (r *RefreshTokenRepository) StoreRefreshToken(userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(
		query,
		userID,
		HashToken(token),
		models.NewNullString(ipAddress),
		models.NewNullString(userAgent),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token by its hash
func (r *RefreshTokenRepository) GetRefreshToken(token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken

	query := `
		SELECT id, user_id, token_hash, ip_address, user_agent, created_at,
		       expires_at, last_used_at, revoked, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	err := r.db.Get(&refreshToken, query, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Token not found
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &refreshToken, nil
}

// RevokeRefreshToken revokes a single token. It returns ErrConcurrentUpdate
// when the token was unknown or already revoked, so a refresh token can be
// rotated exactly once.
func (r *RefreshTokenRepository) RevokeRefreshToken(token string) error {
	result, err := r.db.Exec(`
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW(), last_used_at = NOW()
		WHERE token_hash = $1 AND revoked = FALSE
	`, HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentUpdate
	}

	return nil
}

// RevokeAllUserTokens revokes every active token of a user
func (r *RefreshTokenRepository) RevokeAllUserTokens(userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return result.RowsAffected()
}

// DeleteExpiredTokens removes tokens that expired or were revoked before cutoff
func (r *RefreshTokenRepository) DeleteExpiredTokens(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM refresh_tokens
		WHERE expires_at < $1 OR (revoked = TRUE AND revoked_at < $1)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return result.RowsAffected()
}
