package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher is the part of the leaderboard service the job drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// LeaderboardRefreshJob rebuilds the cached leaderboard on a cron schedule.
type LeaderboardRefreshJob struct {
	refresher Refresher
	schedule  string
	timeout   time.Duration
	logger    *zap.Logger
	cron      *cron.Cron
}

func NewLeaderboardRefreshJob(refresher Refresher, schedule string, logger *zap.Logger) *LeaderboardRefreshJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		timeout:   30 * time.Second,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the job. An empty schedule disables it.
func (j *LeaderboardRefreshJob) Start() error {
	if j.schedule == "" {
		j.logger.Info("leaderboard refresh disabled")
		return nil
	}

	if _, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("leaderboard refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule leaderboard refresh: %w", err)
	}

	j.cron.Start()
	j.logger.Info("leaderboard refresh scheduled", zap.String("schedule", j.schedule))
	return nil
}

// Stop halts scheduling and waits for a running refresh to finish.
func (j *LeaderboardRefreshJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

func (j *LeaderboardRefreshJob) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.refresher.Refresh(ctx); err != nil {
		return err
	}
	j.logger.Debug("leaderboard refreshed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Entries exposes the scheduled entries.
func (j *LeaderboardRefreshJob) Entries() []cron.Entry {
	return j.cron.Entries()
}
