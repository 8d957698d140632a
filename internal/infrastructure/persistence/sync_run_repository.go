package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/sync"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements sync.RunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save creates or updates a sync run
func (r *GormSyncRunRepository) Save(ctx context.Context, run *sync.Run) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindLatestForTenant returns the most recently started run for a tenant
func (r *GormSyncRunRepository) FindLatestForTenant(ctx context.Context, tenantID uuid.UUID) (*sync.Run, error) {
	var run sync.Run
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at desc").
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRecentForTenant returns the most recent runs for a tenant, newest first
func (r *GormSyncRunRepository) FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]sync.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []sync.Run
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteCompletedBefore removes completed runs older than the cutoff and
// returns how many were deleted. Runs that never completed are kept for
// investigation.
func (r *GormSyncRunRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("completed_at IS NOT NULL AND completed_at < ?", cutoff).
		Delete(&sync.Run{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormSyncRunRepository implements the interface
var _ sync.RunRepository = (*GormSyncRunRepository)(nil)
