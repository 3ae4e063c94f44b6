// Package workers runs scheduled housekeeping against the application database
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cropwise-dev/cropwise/internal/models"
)

// Standard 5-field format: minute hour day-of-month month day-of-week
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RunCleanup purges revoked tokens and password resets that can no longer be used
func RunCleanup(db *gorm.DB, now time.Time, logger zerolog.Logger) (int64, error) {
	removed, err := models.PurgeExpired(db, now)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge expired auth records")
		return removed, err
	}

	if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("Purged expired auth records")
	} else {
		logger.Debug().Msg("No expired auth records to purge")
	}
	return removed, nil
}

// StartCleanupScheduler runs RunCleanup once, then on schedule until ctx is
// cancelled. An empty schedule disables the job.
func StartCleanupScheduler(ctx context.Context, db *gorm.DB, schedule string, logger zerolog.Logger) error {
	if schedule == "" {
		logger.Info().Msg("Cleanup schedule not configured")
		return nil
	}

	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(cronLogger{log: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: logger})),
	)

	if _, err := c.AddFunc(schedule, func() {
		_, _ = RunCleanup(db, time.Now(), logger)
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	// Run immediately on startup
	_, _ = RunCleanup(db, time.Now(), logger)

	if next := nextRunTime(schedule, time.Now()); next != nil {
		logger.Info().Str("schedule", schedule).Time("next_run_at", *next).Msg("Cleanup scheduler started")
	}

	c.Start()
	<-ctx.Done()

	// Wait for a running job to finish
	<-c.Stop().Done()
	logger.Info().Msg("Cleanup scheduler stopped")
	return nil
}

// nextRunTime calculates the next run time from a cron schedule
func nextRunTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	schedule, err := scheduleParser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}

// cronLogger adapts zerolog to cron's logger interface
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
