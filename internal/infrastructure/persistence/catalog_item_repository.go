package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCatalogItemRepository implements catalog.Repository using GORM
type GormCatalogItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogItemRepository creates a new GormCatalogItemRepository
func NewGormCatalogItemRepository(db *gorm.DB) *GormCatalogItemRepository {
	return &GormCatalogItemRepository{db: db}
}

// FindByExternalID finds an item by its source-system identity within a tenant
func (r *GormCatalogItemRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByID finds an item by ID within a tenant
func (r *GormCatalogItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForTenant finds all items for a tenant matching the filter
func (r *GormCatalogItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Item{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForTenant counts all items for a tenant
func (r *GormCatalogItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountMutatedSince counts items touched by sync since the given time.
// Feeds the catalog-mutation half of tier classification.
func (r *GormCatalogItemRepository) CountMutatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND last_synced_at >= ?", tenantID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an item
func (r *GormCatalogItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Ensure GormCatalogItemRepository implements the interface
var _ catalog.Repository = (*GormCatalogItemRepository)(nil)
