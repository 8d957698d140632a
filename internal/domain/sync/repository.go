package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunRepository defines persistence operations for sync run audit records
type RunRepository interface {
	Save(ctx context.Context, run *Run) error
	FindLatestForTenant(ctx context.Context, tenantID uuid.UUID) (*Run, error)
	FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Run, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
