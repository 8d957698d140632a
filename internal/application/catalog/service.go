package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const itemCacheTTL = 10 * time.Minute

// Service serves catalog reads for the storefront and dashboard.
// Single-item reads are cache-aside; the sync pipeline invalidates the
// whole store pattern after writes.
type Service struct {
	items catalog.Repository
	cache cache.Store
}

// NewService creates a new catalog Service
func NewService(items catalog.Repository, cacheStore cache.Store) *Service {
	return &Service{items: items, cache: cacheStore}
}

// List returns a page of a store's catalog
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[catalog.Item], error) {
	total, err := s.items.CountForTenant(ctx, tenantID)
	if err != nil {
		return shared.Paginated[catalog.Item]{}, err
	}

	items, err := s.items.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[catalog.Item]{}, err
	}

	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one catalog item by ID
func (s *Service) Get(ctx context.Context, tenantID, itemID uuid.UUID) (*catalog.Item, error) {
	key := cache.CatalogKey(tenantID.String(), itemID.String())

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var item catalog.Item
			if err := json.Unmarshal([]byte(raw), &item); err == nil {
				return &item, nil
			}
		}
	}

	item, err := s.items.FindByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(item); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), itemCacheTTL); err != nil {
				logger.FromContext(ctx).Warn("Catalog cache write failed", zap.Error(err))
			}
		}
	}
	return item, nil
}
