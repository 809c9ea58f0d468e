package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/metrics"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationService delivers and manages per-user notifications
type NotificationService struct {
	repo      *database.NotificationRepository
	listLimit int
	logger    *logrus.Logger
	now       func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *database.NotificationRepository, listLimit int, logger *logrus.Logger) *NotificationService {
	if listLimit <= 0 {
		listLimit = 50
	}
	return &NotificationService{
		repo:      repo,
		listLimit: listLimit,
		logger:    logger,
		now:       time.Now,
	}
}

// NotifyInput describes a notification to deliver
type NotifyInput struct {
	UserID        uuid.UUID
	Type          models.NotificationType
	Title         string
	Message       string
	RelatedID     *uuid.UUID
	RelatedType   *models.RelatedType
	ExpiresInDays int
}

// Notify writes a notification. Pass the caller's transaction as q to make
// delivery atomic with the triggering change.
func (s *NotificationService) Notify(q database.Queryer, in NotifyInput) (*models.Notification, error) {
	n := models.NewNotification(in.UserID, in.Type, in.Title, in.Message, in.RelatedID, in.RelatedType, in.ExpiresInDays, s.now())
	if err := s.repo.Create(q, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the caller's unexpired notifications, newest first
func (s *NotificationService) List(p models.Principal) ([]models.Notification, error) {
	return s.repo.ListForUser(p.UserID, s.now(), s.listLimit)
}

// UnreadCount returns how many of the caller's notifications are unread
func (s *NotificationService) UnreadCount(p models.Principal) (int, error) {
	return s.repo.CountUnread(p.UserID, s.now())
}

// MarkRead flags one of the caller's notifications as read
func (s *NotificationService) MarkRead(p models.Principal, id uuid.UUID) error {
	return notFoundIfMissing(s.repo.MarkRead(id, p.UserID))
}

// MarkAllRead flags every notification of the caller as read
func (s *NotificationService) MarkAllRead(p models.Principal) (int64, error) {
	return s.repo.MarkAllRead(p.UserID)
}

// Delete removes one of the caller's notifications
func (s *NotificationService) Delete(p models.Principal, id uuid.UUID) error {
	return notFoundIfMissing(s.repo.Delete(id, p.UserID))
}

// PurgeExpired removes notifications past their expiry
func (s *NotificationService) PurgeExpired() (int64, error) {
	purged, err := s.repo.DeleteExpired(s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	metrics.AddNotificationsPurged(purged)
	if purged > 0 {
		s.logger.WithField("count", purged).Debug("Purged expired notifications")
	}
	return purged, nil
}

// Someone else's notification is reported exactly like a missing one
func notFoundIfMissing(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError(msgNotificationMissing)
	}
	return err
}
