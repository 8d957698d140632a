package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/store"
	"gorm.io/gorm"
)

// GormActivityReader reads trailing-24h activity for tier classification.
// Orders are owned by the commerce subsystem, so they are read straight
// from its table rather than through a domain aggregate.
type GormActivityReader struct {
	db      *gorm.DB
	catalog catalog.Repository

	// now is swappable so tests can pin the trailing window
	now func() time.Time
}

// NewGormActivityReader creates a new GormActivityReader
func NewGormActivityReader(db *gorm.DB, catalogRepo catalog.Repository) *GormActivityReader {
	return &GormActivityReader{
		db:      db,
		catalog: catalogRepo,
		now:     time.Now,
	}
}

// ActivityFor implements store.ActivityReader
func (r *GormActivityReader) ActivityFor(ctx context.Context, storeID uuid.UUID) (store.ActivityMetrics, error) {
	since := r.now().Add(-24 * time.Hour)

	var orders int64
	if err := r.db.WithContext(ctx).
		Table("orders").
		Where("tenant_id = ? AND created_at >= ?", storeID, since).
		Count(&orders).Error; err != nil {
		return store.ActivityMetrics{}, err
	}

	mutations, err := r.catalog.CountMutatedSince(ctx, storeID, since)
	if err != nil {
		return store.ActivityMetrics{}, err
	}

	return store.ActivityMetrics{
		OrdersPerDay:           orders,
		CatalogMutationsPerDay: mutations,
	}, nil
}

// SetClock replaces the reader's clock. Test helper only.
func (r *GormActivityReader) SetClock(now func() time.Time) {
	r.now = now
}

// Ensure GormActivityReader implements the interface
var _ store.ActivityReader = (*GormActivityReader)(nil)
