package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by its ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByDomain finds a store by its custom domain
func (r *GormStoreRepository) FindByDomain(ctx context.Context, domain string) (*store.Store, error) {
	if domain == "" {
		return nil, shared.ErrNotFound
	}
	var s store.Store
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindBySyncSecret finds a store by its sync agent credential
func (r *GormStoreRepository) FindBySyncSecret(ctx context.Context, secret string) (*store.Store, error) {
	if secret == "" {
		return nil, shared.ErrNotFound
	}
	var s store.Store
	if err := r.db.WithContext(ctx).Where("sync_secret = ?", secret).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindDefault returns the oldest active store, used as the fallback tenant
// for public traffic that carries no tenant signal
func (r *GormStoreRepository) FindDefault(ctx context.Context) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at asc").
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindActive finds all active stores matching the filter
func (r *GormStoreRepository) FindActive(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	var stores []store.Store
	query := applyFilter(r.db.WithContext(ctx).Model(&store.Store{}).Where("is_active = ?", true), filter)
	if err := query.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Ensure GormStoreRepository implements the interface
var _ store.Repository = (*GormStoreRepository)(nil)
