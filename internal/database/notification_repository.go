package database

import (
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, related_id, related_type,
	read, created_at, expires_at`

// Create inserts a notification, optionally inside the caller's transaction
func (r *NotificationRepository) Create(q Queryer, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, related_id, related_type,
			read, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(
		query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedID,
		n.RelatedType,
		n.Read,
		n.CreatedAt,
		n.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", translateError(err))
	}

	return nil
}

// ListForUser returns the user's unexpired notifications, newest first
func (r *NotificationRepository) ListForUser(userID uuid.UUID, now time.Time, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.Select(&notifications, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts the user's unread, unexpired notifications
func (r *NotificationRepository) CountUnread(userID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND read = FALSE AND (expires_at IS NULL OR expires_at > $2)
	`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags a notification owned by userID as read. It returns
// sql.ErrNoRows when no such notification exists.
func (r *NotificationRepository) MarkRead(id, userID uuid.UUID) error {
	result, err := r.db.Exec(
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectOneRow(result, "mark notification read")
}

// MarkAllRead flags every notification of userID as read
func (r *NotificationRepository) MarkAllRead(userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a notification owned by userID. It returns sql.ErrNoRows
// when no such notification exists.
func (r *NotificationRepository) Delete(id, userID uuid.UUID) error {
	result, err := r.db.Exec(
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return expectOneRow(result, "delete notification")
}

// DeleteExpired purges notifications whose expiry has passed
func (r *NotificationRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return result.RowsAffected()
}
