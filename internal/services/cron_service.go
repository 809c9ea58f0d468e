package services

import (
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	schedules     config.CronConfig
	notifications *NotificationService
	auth          *AuthService
	logger        *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(schedules config.CronConfig, notifications *NotificationService, auth *AuthService, logger *logrus.Logger) *CronService {
	return &CronService{
		// Schedules carry a seconds field
		cron:          cron.New(cron.WithSeconds()),
		schedules:     schedules,
		notifications: notifications,
		auth:          auth,
		logger:        logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	// Expired notifications, every 10 minutes by default
	if _, err := s.cron.AddFunc(s.schedules.NotificationPurgeSchedule, s.purgeNotificationsJob); err != nil {
		return fmt.Errorf("failed to schedule notification purge job: %w", err)
	}
	s.logger.WithField("schedule", s.schedules.NotificationPurgeSchedule).Info("✓ Scheduled: Purge expired notifications")

	// Expired and revoked refresh tokens, daily at 3:00 AM by default
	if _, err := s.cron.AddFunc(s.schedules.TokenCleanupSchedule, s.cleanupRefreshTokensJob); err != nil {
		return fmt.Errorf("failed to schedule token cleanup job: %w", err)
	}
	s.logger.WithField("schedule", s.schedules.TokenCleanupSchedule).Info("✓ Scheduled: Clean up refresh tokens")

	s.cron.Start()
	s.logger.Info("✓ Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("✓ Cron service stopped")
}

func (s *CronService) purgeNotificationsJob() {
	startTime := time.Now()

	purged, err := s.notifications.PurgeExpired()
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to purge notifications")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"purged":   purged,
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] Notification purge finished")
}

func (s *CronService) cleanupRefreshTokensJob() {
	startTime := time.Now()

	deleted, err := s.auth.CleanupRefreshTokens()
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to clean up refresh tokens")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] Refresh token cleanup finished")
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
