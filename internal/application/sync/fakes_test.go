package sync

import (
	"context"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// Stateful in-memory repositories. The session tests exercise multi-step
// reconciliation flows, which need real find-then-save behaviour rather
// than canned expectations.

type fakeItemRepo struct {
	mu    gosync.Mutex
	items map[string]catalog.Item // key: tenantID|externalID
	// failOn makes Save fail for one external ID, to test error isolation
	failOn map[string]error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:  make(map[string]catalog.Item),
		failOn: make(map[string]error),
	}
}

func itemKey(tenantID uuid.UUID, externalID string) string {
	return tenantID.String() + "|" + externalID
}

func (r *fakeItemRepo) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemKey(tenantID, externalID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copy := item
	return &copy, nil
}

func (r *fakeItemRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.TenantID == tenantID && item.ID == id {
			copy := item
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Item
	for _, item := range r.items {
		if item.TenantID == tenantID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (r *fakeItemRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	items, _ := r.FindAllForTenant(ctx, tenantID, shared.Filter{})
	return int64(len(items)), nil
}

func (r *fakeItemRepo) CountMutatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if item.TenantID == tenantID && !item.LastSyncedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeItemRepo) Save(ctx context.Context, item *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failOn[item.ExternalID]; ok {
		return err
	}
	r.items[itemKey(item.TenantID, item.ExternalID)] = *item
	return nil
}

var _ catalog.Repository = (*fakeItemRepo)(nil)

type fakeStoreRepo struct {
	mu     gosync.Mutex
	stores map[uuid.UUID]store.Store
	saves  int
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[uuid.UUID]store.Store)}
}

func (r *fakeStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stores[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copy := st
	return &copy, nil
}

func (r *fakeStoreRepo) FindByDomain(ctx context.Context, domain string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.stores {
		if st.Domain == domain {
			copy := st
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStoreRepo) FindBySyncSecret(ctx context.Context, secret string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.stores {
		if st.SyncSecret == secret {
			copy := st
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStoreRepo) FindDefault(ctx context.Context) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.stores {
		if st.IsActive {
			copy := st
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStoreRepo) FindActive(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter.Page > 1 {
		return nil, nil
	}
	var out []store.Store
	for _, st := range r.stores {
		if st.IsActive {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeStoreRepo) Save(ctx context.Context, st *store.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.stores[st.ID] = *st
	return nil
}

var _ store.Repository = (*fakeStoreRepo)(nil)

type fakeRunRepo struct {
	mu   gosync.Mutex
	runs []syncdomain.Run
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{}
}

func (r *fakeRunRepo) Save(ctx context.Context, run *syncdomain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) FindLatestForTenant(ctx context.Context, tenantID uuid.UUID) (*syncdomain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *syncdomain.Run
	for i := range r.runs {
		if r.runs[i].TenantID != tenantID {
			continue
		}
		if latest == nil || r.runs[i].StartedAt.After(latest.StartedAt) {
			latest = &r.runs[i]
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (r *fakeRunRepo) FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]syncdomain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdomain.Run
	for _, run := range r.runs {
		if run.TenantID == tenantID {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRunRepo) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []syncdomain.Run
	var deleted int64
	for _, run := range r.runs {
		if run.CompletedAt != nil && run.CompletedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	return deleted, nil
}

var _ syncdomain.RunRepository = (*fakeRunRepo)(nil)

func newRunAt(tenantID uuid.UUID, startedAt time.Time) *syncdomain.Run {
	run := syncdomain.NewRun(tenantID, syncdomain.KindDelta, 1, startedAt)
	run.Finalize(1, 0, 0, nil, startedAt.Add(time.Second))
	return run
}

type fakeActivityReader struct {
	metrics map[uuid.UUID]store.ActivityMetrics
	err     error
}

func (r *fakeActivityReader) ActivityFor(ctx context.Context, storeID uuid.UUID) (store.ActivityMetrics, error) {
	if r.err != nil {
		return store.ActivityMetrics{}, r.err
	}
	return r.metrics[storeID], nil
}

var _ store.ActivityReader = (*fakeActivityReader)(nil)
