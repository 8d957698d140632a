package sync

import (
	"context"
	"time"

	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"go.uber.org/zap"
)

// TierEvaluationJob sweeps all active stores through tier classification
type TierEvaluationJob struct {
	tiers *TierService
}

// NewTierEvaluationJob creates the recurring tier evaluation job
func NewTierEvaluationJob(tiers *TierService) *TierEvaluationJob {
	return &TierEvaluationJob{tiers: tiers}
}

// Name implements scheduler.Job
func (j *TierEvaluationJob) Name() string { return "tier-evaluation" }

// Run implements scheduler.Job
func (j *TierEvaluationJob) Run(ctx context.Context) error {
	return j.tiers.EvaluateAll(ctx)
}

// RetentionJob purges completed sync runs past the retention age
type RetentionJob struct {
	runs   syncdomain.RunRepository
	age    time.Duration
	logger *zap.Logger

	// now is swappable so tests can pin the cutoff
	now func() time.Time
}

// NewRetentionJob creates the recurring audit retention job
func NewRetentionJob(runs syncdomain.RunRepository, age time.Duration, logger *zap.Logger) *RetentionJob {
	return &RetentionJob{
		runs:   runs,
		age:    age,
		logger: logger.Named("retention"),
		now:    time.Now,
	}
}

// Name implements scheduler.Job
func (j *RetentionJob) Name() string { return "sync-run-retention" }

// Run implements scheduler.Job
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.age)
	deleted, err := j.runs.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		j.logger.Info("Purged old sync runs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
