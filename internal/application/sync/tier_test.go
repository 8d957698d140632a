package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTierEnv(t *testing.T, metrics store.ActivityMetrics) (*TierService, *fakeStoreRepo, *store.Store) {
	t.Helper()

	stores := newFakeStoreRepo()
	st, err := store.NewStore("Sharma Kirana", "ext-1")
	require.NoError(t, err)
	require.NoError(t, stores.Save(context.Background(), st))
	stores.saves = 0

	activity := &fakeActivityReader{metrics: map[uuid.UUID]store.ActivityMetrics{st.ID: metrics}}
	return NewTierService(stores, activity, zap.NewNop()), stores, st
}

func TestTierService_EvaluateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes an active store", func(t *testing.T) {
		svc, stores, st := newTierEnv(t, store.ActivityMetrics{OrdersPerDay: 60})

		changed, err := svc.EvaluateStore(ctx, st)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, store.Tier1, st.SyncTier)
		assert.Equal(t, 5, st.SyncIntervalMinutes)
		assert.Equal(t, 1, stores.saves)
	})

	t.Run("unchanged classification writes nothing", func(t *testing.T) {
		svc, stores, st := newTierEnv(t, store.ActivityMetrics{OrdersPerDay: 7})

		// Default tier is already 3, metrics map to 3
		changed, err := svc.EvaluateStore(ctx, st)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, stores.saves)
	})

	t.Run("is deterministic for identical metrics", func(t *testing.T) {
		svc, _, st := newTierEnv(t, store.ActivityMetrics{CatalogMutationsPerDay: 35})

		changed, err := svc.EvaluateStore(ctx, st)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, store.Tier2, st.SyncTier)

		for i := 0; i < 3; i++ {
			changed, err = svc.EvaluateStore(ctx, st)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.Equal(t, store.Tier2, st.SyncTier)
		}
	})

	t.Run("demotes an idle store", func(t *testing.T) {
		svc, _, st := newTierEnv(t, store.ActivityMetrics{})

		changed, err := svc.EvaluateStore(ctx, st)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, store.Tier4, st.SyncTier)
		assert.Equal(t, 240, st.SyncIntervalMinutes)
	})

	t.Run("propagates activity reader failures", func(t *testing.T) {
		stores := newFakeStoreRepo()
		st, err := store.NewStore("S", "")
		require.NoError(t, err)
		require.NoError(t, stores.Save(ctx, st))

		svc := NewTierService(stores, &fakeActivityReader{err: errors.New("orders table gone")}, zap.NewNop())
		_, err = svc.EvaluateStore(ctx, st)
		assert.Error(t, err)
	})
}

func TestTierService_EvaluateAll(t *testing.T) {
	ctx := context.Background()

	stores := newFakeStoreRepo()
	metrics := make(map[uuid.UUID]store.ActivityMetrics)

	busy, err := store.NewStore("Busy", "b")
	require.NoError(t, err)
	require.NoError(t, stores.Save(ctx, busy))
	metrics[busy.ID] = store.ActivityMetrics{OrdersPerDay: 100}

	idle, err := store.NewStore("Idle", "i")
	require.NoError(t, err)
	require.NoError(t, stores.Save(ctx, idle))

	inactive, err := store.NewStore("Zzz", "z")
	require.NoError(t, err)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, stores.Save(ctx, inactive))
	metrics[inactive.ID] = store.ActivityMetrics{OrdersPerDay: 100}

	svc := NewTierService(stores, &fakeActivityReader{metrics: metrics}, zap.NewNop())
	require.NoError(t, svc.EvaluateAll(ctx))

	got, err := stores.FindByID(ctx, busy.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Tier1, got.SyncTier)

	got, err = stores.FindByID(ctx, idle.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Tier4, got.SyncTier)

	// Inactive stores are skipped by the sweep
	got, err = stores.FindByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultTier, got.SyncTier)
}

func TestRetentionJob(t *testing.T) {
	ctx := context.Background()
	runs := newFakeRunRepo()

	tenantID := uuid.New()
	now := time.Now()

	old := newRunAt(tenantID, now.Add(-45*24*time.Hour))
	recent := newRunAt(tenantID, now.Add(-time.Hour))
	require.NoError(t, runs.Save(ctx, old))
	require.NoError(t, runs.Save(ctx, recent))

	job := NewRetentionJob(runs, 30*24*time.Hour, zap.NewNop())
	assert.Equal(t, "sync-run-retention", job.Name())
	require.NoError(t, job.Run(ctx))

	remaining, err := runs.FindRecentForTenant(ctx, tenantID, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

func TestTierEvaluationJob(t *testing.T) {
	stores := newFakeStoreRepo()
	svc := NewTierService(stores, &fakeActivityReader{}, zap.NewNop())
	job := NewTierEvaluationJob(svc)

	assert.Equal(t, "tier-evaluation", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}
