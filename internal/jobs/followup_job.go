package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FollowUpJobName is the name of the follow-up reminder job
const FollowUpJobName = "followup_sweep"

// DefaultFollowUpTimeout bounds a single sweep
const DefaultFollowUpTimeout = 2 * time.Minute

// FollowUpSweeper reminds lead owners of due follow-up calls.
// This interface allows the job to call the service without importing the
// service package directly.
type FollowUpSweeper interface {
	// SweepDueFollowUps notifies owners of leads whose next call time has
	// passed. Returns notified and skipped counts.
	SweepDueFollowUps(ctx context.Context, before time.Time, limit int) (notified int, skipped int, err error)
}

// FollowUpJob runs the periodic follow-up reminder sweep.
type FollowUpJob struct {
	sweeper   FollowUpSweeper
	logger    *zap.Logger
	timeout   time.Duration
	batchSize int
}

// NewFollowUpJob creates a new follow-up reminder job.
// The timeout controls how long one sweep is allowed to run.
func NewFollowUpJob(sweeper FollowUpSweeper, logger *zap.Logger, timeout time.Duration, batchSize int) *FollowUpJob {
	if timeout <= 0 {
		timeout = DefaultFollowUpTimeout
	}
	return &FollowUpJob{
		sweeper:   sweeper,
		logger:    logger,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// Run executes one sweep.
// This is called by the scheduler according to the cron expression.
func (j *FollowUpJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	notified, skipped, err := j.sweeper.SweepDueFollowUps(ctx, start, j.batchSize)
	if err != nil {
		j.logger.Error("follow-up sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if notified > 0 || skipped > 0 {
		j.logger.Info("follow-up sweep completed",
			zap.Int("notified", notified),
			zap.Int("skipped", skipped),
			zap.Duration("duration", time.Since(start)))
	}
}
