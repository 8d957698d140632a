package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	service *Service
	items   *fakeItemRepo
	stores  *fakeStoreRepo
	runs    *fakeRunRepo
	cache   *cache.MemoryStore
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	items := newFakeItemRepo()
	stores := newFakeStoreRepo()
	runs := newFakeRunRepo()
	memCache := cache.NewMemoryStore()
	t.Cleanup(func() { _ = memCache.Close() })

	st, err := store.NewStore("Sharma Kirana", "ext-store-1")
	require.NoError(t, err)
	require.NoError(t, stores.Save(context.Background(), st))

	cfg := config.SyncConfig{
		MaxBatchSize:   1000,
		BatchTimeout:   2 * time.Minute,
		StoreCacheTTL:  time.Hour,
		DefaultPageLen: 20,
	}

	service := NewService(stores, runs, NewReconciler(items), nil, memCache, cfg)
	return &testEnv{
		service: service,
		items:   items,
		stores:  stores,
		runs:    runs,
		cache:   memCache,
		store:   st,
	}
}

func record(externalID, name string, price float64, qty int) syncdomain.Record {
	return syncdomain.Record{
		ExternalID:   externalID,
		Name:         name,
		MRP:          decimal.NewFromFloat(price),
		SellingPrice: decimal.NewFromFloat(price),
		Quantity:     qty,
	}
}

func TestService_ProcessBatch_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive store", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.store.Deactivate())

		_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{record("A", "A", 1, 1)})
		assert.Equal(t, shared.ErrStoreInactive, err)
	})

	t.Run("unknown sync kind", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.Kind("bulk"), []syncdomain.Record{record("A", "A", 1, 1)})
		assert.Equal(t, shared.ErrInvalidSyncKind, err)
	})

	t.Run("empty batch", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, nil)
		assert.Equal(t, shared.ErrEmptyBatch, err)
	})

	t.Run("oversized batch rejected wholesale", func(t *testing.T) {
		env := newTestEnv(t)
		records := make([]syncdomain.Record, 1001)
		for i := range records {
			records[i] = record("A", "A", 1, 1)
		}
		_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, records)
		assert.Equal(t, shared.ErrBatchTooLarge, err)

		// Nothing was written, nothing was audited
		count, _ := env.items.CountForTenant(ctx, env.store.ID)
		assert.Zero(t, count)
		assert.Empty(t, env.runs.runs)
	})
}

func TestService_ProcessBatch_CreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 12),
		record("EXT-2", "Tata Salt 1kg", 28, 40),
	})
	require.NoError(t, err)

	assert.Equal(t, syncdomain.StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Created)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)

	res, err = env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 280, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Zero(t, res.Created)

	item, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)
	assert.Equal(t, 2, item.SyncVersion)
	assert.Equal(t, 10, item.Quantity)
}

func TestService_ProcessBatch_DeltaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	batch := []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 12),
		record("EXT-2", "Tata Salt 1kg", 28, 40),
	}

	first, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, batch)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 2, second.Unchanged)
	assert.Equal(t, syncdomain.StatusSuccess, second.Status)

	// The rows are untouched: version still 1
	item, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.SyncVersion)
}

func TestService_ProcessBatch_FullAlwaysWrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	batch := []syncdomain.Record{record("EXT-1", "Amul Butter 500g", 275, 12)}

	_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, batch)
	require.NoError(t, err)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	item, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)
	assert.Equal(t, 2, item.SyncVersion)
}

func TestService_ProcessBatch_DuplicateExternalIDLastWins(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 12),
		record("EXT-1", "Amul Butter 500g", 290, 8),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)

	count, _ := env.items.CountForTenant(ctx, env.store.ID)
	assert.Equal(t, int64(1), count)

	item, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)
	assert.Equal(t, 8, item.Quantity)
	assert.True(t, item.MRP.Equal(decimal.NewFromInt(290)))
}

func TestService_ProcessBatch_PartialFailureIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	records := make([]syncdomain.Record, 0, 10)
	for i := 0; i < 9; i++ {
		records = append(records, record("EXT-"+string(rune('A'+i)), "Item", 10, 1))
	}
	bad := record("EXT-BAD", "", 10, 1) // missing name
	records = append(records[:5], append([]syncdomain.Record{bad}, records[5:]...)...)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, records)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Processed)
	assert.Equal(t, 9, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, syncdomain.StatusPartial, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "EXT-BAD", res.Errors[0].ExternalID)

	count, _ := env.items.CountForTenant(ctx, env.store.ID)
	assert.Equal(t, int64(9), count)
}

func TestService_ProcessBatch_InfrastructureErrorIsPerRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.items.failOn["EXT-2"] = errors.New("constraint violation")

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("EXT-1", "A", 10, 1),
		record("EXT-2", "B", 10, 1),
		record("EXT-3", "C", 10, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, syncdomain.StatusPartial, res.Status)
}

func TestService_ProcessBatch_TotalFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("", "A", 10, 1),
		record("", "B", 10, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, syncdomain.StatusFailed, res.Status)
	assert.Equal(t, 2, res.Failed)

	// Total failure does not advance the sync watermark
	st, err := env.stores.FindByID(ctx, env.store.ID)
	require.NoError(t, err)
	assert.Nil(t, st.LastSyncAt)
}

func TestService_ProcessBatch_AuditTrail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("EXT-1", "A", 10, 1),
		record("EXT-BAD", "", 10, 1),
	})
	require.NoError(t, err)

	run, err := env.runs.FindLatestForTenant(ctx, env.store.ID)
	require.NoError(t, err)
	assert.Equal(t, res.SyncID, run.ID)
	assert.Equal(t, syncdomain.KindDelta, run.Kind)
	assert.Equal(t, syncdomain.StatusPartial, run.Status)
	assert.Equal(t, 2, run.RecordsReceived)
	assert.Equal(t, 1, run.RecordsCreated)
	assert.Equal(t, 1, run.RecordsFailed)
	require.NotNil(t, run.CompletedAt)

	errs := run.RecordErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "EXT-BAD", errs[0].ExternalID)

	// Watermark advanced because some records landed
	st, err := env.stores.FindByID(ctx, env.store.ID)
	require.NoError(t, err)
	assert.NotNil(t, st.LastSyncAt)
}

func TestService_ProcessBatch_InventoryOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 12),
	})
	require.NoError(t, err)

	before, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)

	t.Run("updates quantity without touching the checksum", func(t *testing.T) {
		res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindInventoryOnly, []syncdomain.Record{
			record("EXT-1", "Amul Butter 500g", 275, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)

		after, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
		require.NoError(t, err)
		assert.Zero(t, after.Quantity)
		assert.False(t, after.IsInStock)
		assert.Equal(t, before.SyncChecksum, after.SyncChecksum)
		assert.Equal(t, before.SyncVersion, after.SyncVersion)
	})

	t.Run("unknown item falls back to a create", func(t *testing.T) {
		res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindInventoryOnly, []syncdomain.Record{
			record("EXT-NEW", "Parle-G 250g", 25, 100),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
	})
}

func TestService_ProcessBatch_InvalidatesCatalogCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	key := cache.CatalogKey(env.store.ID.String(), "some-item")
	require.NoError(t, env.cache.Set(ctx, key, "cached", time.Hour))

	_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, []syncdomain.Record{
		record("EXT-1", "A", 10, 1),
	})
	require.NoError(t, err)

	_, err = env.cache.Get(ctx, key)
	assert.Equal(t, cache.ErrCacheMiss, err)
}

func TestService_ProcessBatch_InventoryOnlyInvalidatesPerItem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindFull, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 12),
		record("EXT-2", "Tata Salt 1kg", 28, 40),
	})
	require.NoError(t, err)

	touched, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-1")
	require.NoError(t, err)
	other, err := env.items.FindByExternalID(ctx, env.store.ID, "EXT-2")
	require.NoError(t, err)

	touchedCatalog := cache.CatalogKey(env.store.ID.String(), touched.ID.String())
	touchedInventory := cache.InventoryKey(env.store.ID.String(), touched.ID.String())
	otherCatalog := cache.CatalogKey(env.store.ID.String(), other.ID.String())
	for _, key := range []string{touchedCatalog, touchedInventory, otherCatalog} {
		require.NoError(t, env.cache.Set(ctx, key, "cached", time.Hour))
	}

	_, err = env.service.ProcessBatch(ctx, env.store, syncdomain.KindInventoryOnly, []syncdomain.Record{
		record("EXT-1", "Amul Butter 500g", 275, 0),
	})
	require.NoError(t, err)

	_, err = env.cache.Get(ctx, touchedCatalog)
	assert.Equal(t, cache.ErrCacheMiss, err)
	_, err = env.cache.Get(ctx, touchedInventory)
	assert.Equal(t, cache.ErrCacheMiss, err)

	// The untouched item's entry survives the fast path
	val, err := env.cache.Get(ctx, otherCatalog)
	require.NoError(t, err)
	assert.Equal(t, "cached", val)
}

func TestService_ProcessBatch_BudgetExhaustion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Clock jumps past the deadline after the second record
	base := time.Unix(1000, 0)
	calls := 0
	env.service.SetClock(func() time.Time {
		calls++
		if calls > 4 {
			return base.Add(3 * time.Minute)
		}
		return base
	})

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("EXT-1", "A", 10, 1),
		record("EXT-2", "B", 10, 1),
		record("EXT-3", "C", 10, 1),
		record("EXT-4", "D", 10, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, syncdomain.StatusFailed, res.Status)
	assert.Positive(t, res.Failed)
	assert.Positive(t, res.Created, "work done before the deadline is kept")

	run, err := env.runs.FindLatestForTenant(ctx, env.store.ID)
	require.NoError(t, err)
	assert.Equal(t, syncdomain.StatusFailed, run.Status)
	assert.Equal(t, run.RecordsCreated, res.Created)
}

func TestService_ProcessBatch_NextRecommendedSyncAt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	base := time.Unix(1000, 0)
	env.service.SetClock(func() time.Time { return base })

	res, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
		record("EXT-1", "A", 10, 1),
	})
	require.NoError(t, err)

	// Default tier is 3 with a 60 minute interval
	assert.Equal(t, base.Add(60*time.Minute), res.NextRecommendedSyncAt)
}

func TestService_RecentRuns(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		_, err := env.service.ProcessBatch(ctx, env.store, syncdomain.KindDelta, []syncdomain.Record{
			record("EXT-1", "A", float64(10+i), 1),
		})
		require.NoError(t, err)
	}

	runs, err := env.service.RecentRuns(ctx, env.store.ID, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	latest, err := env.service.LatestRun(ctx, env.store.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)

	t.Run("no runs yields nil without error", func(t *testing.T) {
		fresh := newTestEnv(t)
		latest, err := fresh.service.LatestRun(ctx, fresh.store.ID)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})
}
