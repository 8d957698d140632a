package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Resolver answers "which store is this request for". Lookups are cached
// because every public request resolves a tenant; a cache outage degrades
// to direct repository reads.
//
// Sync secrets are looked up uncached on purpose: credentials should not
// sit in the cache, and sync traffic is orders of magnitude rarer than
// storefront reads.
type Resolver struct {
	stores store.Repository
	cache  cache.Store
	ttl    time.Duration
}

// NewResolver creates a new Resolver
func NewResolver(stores store.Repository, cacheStore cache.Store, ttl time.Duration) *Resolver {
	return &Resolver{
		stores: stores,
		cache:  cacheStore,
		ttl:    ttl,
	}
}

// ByID resolves a store by its UUID string
func (r *Resolver) ByID(ctx context.Context, id string) (*store.Store, error) {
	storeID, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	if st, ok := r.cached(ctx, cache.StoreByIDKey(id)); ok {
		return st, nil
	}

	st, err := r.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, cache.StoreByIDKey(id), st)
	return st, nil
}

// ByDomain resolves a store by its custom domain
func (r *Resolver) ByDomain(ctx context.Context, domain string) (*store.Store, error) {
	if domain == "" {
		return nil, shared.ErrNotFound
	}

	if st, ok := r.cached(ctx, cache.StoreByDomainKey(domain)); ok {
		return st, nil
	}

	st, err := r.stores.FindByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, cache.StoreByDomainKey(domain), st)
	return st, nil
}

// Default resolves the fallback store for public traffic with no tenant signal
func (r *Resolver) Default(ctx context.Context) (*store.Store, error) {
	if st, ok := r.cached(ctx, cache.DefaultStoreKey()); ok {
		return st, nil
	}

	st, err := r.stores.FindDefault(ctx)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, cache.DefaultStoreKey(), st)
	return st, nil
}

// BySyncSecret resolves a store by its sync agent credential, bypassing
// the cache
func (r *Resolver) BySyncSecret(ctx context.Context, secret string) (*store.Store, error) {
	return r.stores.FindBySyncSecret(ctx, secret)
}

// Invalidate drops all cached entries for a store. Called after any
// store mutation (tier change, deactivation, domain change).
func (r *Resolver) Invalidate(ctx context.Context, st *store.Store) {
	if r.cache == nil {
		return
	}
	keys := []string{cache.StoreByIDKey(st.ID.String()), cache.DefaultStoreKey()}
	if st.Domain != "" {
		keys = append(keys, cache.StoreByDomainKey(st.Domain))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx).Warn("Store cache invalidation failed",
			zap.String("store_id", st.ID.String()),
			zap.Error(err),
		)
	}
}

// cached returns a store from the cache. Inactive stores are treated as
// misses so a deactivation takes effect within one request even while a
// stale entry lingers.
func (r *Resolver) cached(ctx context.Context, key string) (*store.Store, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			logger.FromContext(ctx).Warn("Store cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var st store.Store
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, false
	}
	if !st.IsActive {
		return nil, false
	}
	return &st, true
}

func (r *Resolver) remember(ctx context.Context, key string, st *store.Store) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		logger.FromContext(ctx).Warn("Store cache write failed", zap.Error(err))
	}
}
