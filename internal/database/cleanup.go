package database

import (
	"fmt"
	"time"

	"greylog/internal/database/repositories"

	"github.com/pterm/pterm"
)

// PurgeSettings is the read-only view of the admin settings the sweep needs
type PurgeSettings interface {
	Running() bool
	PurgeDays() int
}

// PurgeService deletes stale non-malicious log rows on a daily schedule
type PurgeService struct {
	repo      repositories.IPLogRepository
	settings  PurgeSettings
	logger    *pterm.Logger
	purgeTime string
	interval  time.Duration
	stopChan  chan struct{}
	running   bool
	// Stats tracking
	lastRunTime   time.Time
	rowsDeleted   int64
	purgeDuration time.Duration
}

// PurgeStats holds statistics about purge operations
type PurgeStats struct {
	LastRunTime      time.Time
	RowsDeleted      int64
	PurgeDuration    time.Duration
	NextScheduledRun time.Time
}

// NewPurgeService creates a new purge service. purgeTime is the daily run
// time in HH:MM format.
func NewPurgeService(repo repositories.IPLogRepository, settings PurgeSettings, logger *pterm.Logger, purgeTime string, interval time.Duration) *PurgeService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &PurgeService{
		repo:      repo,
		settings:  settings,
		logger:    logger,
		purgeTime: purgeTime,
		interval:  interval,
		stopChan:  make(chan struct{}),
		running:   false,
	}
}

// Start begins the purge service
func (s *PurgeService) Start() {
	s.running = true
	s.logger.Info("Starting log purge service",
		s.logger.Args("purge_time", s.purgeTime))

	go s.scheduledPurgeLoop()
}

// Stop stops the purge service
func (s *PurgeService) Stop() {
	if !s.running {
		return
	}

	s.logger.Info("Stopping log purge service")
	close(s.stopChan)
	s.running = false
}

// scheduledPurgeLoop runs the purge at the scheduled time daily
func (s *PurgeService) scheduledPurgeLoop() {
	for {
		select {
		case <-s.stopChan:
			return
		default:
			now := time.Now()
			targetTime := s.parsePurgeTime(now)

			// If target time has passed today, schedule for tomorrow
			if now.After(targetTime) {
				targetTime = targetTime.Add(24 * time.Hour)
			}

			waitDuration := time.Until(targetTime)
			s.logger.Debug("Next purge scheduled",
				s.logger.Args("next_run", targetTime.Format("2006-01-02 15:04:05"), "wait_duration", waitDuration.Round(time.Minute)))

			select {
			case <-s.stopChan:
				return
			case <-time.After(minDuration(waitDuration, s.interval)):
				if time.Now().After(targetTime.Add(-1 * time.Minute)) {
					s.RunPurge()
				}
			}
		}
	}
}

// parsePurgeTime parses the purge time string (HH:MM) and returns today's time
func (s *PurgeService) parsePurgeTime(baseTime time.Time) time.Time {
	purgeTime, err := time.Parse("15:04", s.purgeTime)
	if err != nil {
		s.logger.Warn("Invalid purge time format, using 02:00",
			s.logger.Args("configured", s.purgeTime, "error", err))
		purgeTime, _ = time.Parse("15:04", "02:00")
	}

	return time.Date(
		baseTime.Year(), baseTime.Month(), baseTime.Day(),
		purgeTime.Hour(), purgeTime.Minute(), 0, 0,
		baseTime.Location(),
	)
}

// RunPurge performs one sweep: all rows not updated within the configured
// number of days are deleted, except those classified malicious. The sweep is
// a no-op while logging is disabled.
func (s *PurgeService) RunPurge() {
	if !s.settings.Running() {
		s.logger.Debug("Logging disabled, skipping purge sweep")
		return
	}

	days := s.settings.PurgeDays()
	s.logger.Info("Starting scheduled log purge", s.logger.Args("purge_days", days))

	startTime := time.Now()

	deleted, err := s.repo.PurgeOlderThan(days)
	if err != nil {
		s.logger.WithCaller().Error("Failed to purge log rows",
			s.logger.Args("error", err, "purge_days", days))
		return
	}

	purgeDuration := time.Since(startTime)

	s.lastRunTime = startTime
	s.rowsDeleted = deleted
	s.purgeDuration = purgeDuration

	s.logger.Info("Purge completed",
		s.logger.Args(
			"rows_deleted", deleted,
			"duration", purgeDuration.Round(time.Second),
			"purge_days", days,
		))
}

// GetStats returns purge statistics
func (s *PurgeService) GetStats() *PurgeStats {
	now := time.Now()
	targetTime := s.parsePurgeTime(now)

	if now.After(targetTime) {
		targetTime = targetTime.Add(24 * time.Hour)
	}

	return &PurgeStats{
		LastRunTime:      s.lastRunTime,
		RowsDeleted:      s.rowsDeleted,
		PurgeDuration:    s.purgeDuration,
		NextScheduledRun: targetTime,
	}
}

// ManualPurge triggers a sweep immediately (useful for testing/admin)
func (s *PurgeService) ManualPurge() error {
	if !s.settings.Running() {
		return fmt.Errorf("logging disabled, nothing to purge")
	}

	s.logger.Info("Manual purge triggered")
	go s.RunPurge()
	return nil
}

// minDuration returns the minimum of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
