package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogItemTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Item{})
	require.NoError(t, err)

	return db
}

func syncFields(name string, price float64, qty int) catalog.SyncFields {
	return catalog.SyncFields{
		Name:         name,
		MRP:          decimal.NewFromFloat(price),
		SellingPrice: decimal.NewFromFloat(price),
		Quantity:     qty,
	}
}

func TestGormCatalogItemRepository_SaveAndFindByExternalID(t *testing.T) {
	db := setupCatalogItemTestDB(t)
	repo := NewGormCatalogItemRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()

	t.Run("round-trips an item", func(t *testing.T) {
		item, err := catalog.NewItemFromSync(tenantID, "EXT-001", syncFields("Amul Butter 500g", 275, 12), time.Now())
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, item))

		found, err := repo.FindByExternalID(ctx, tenantID, "EXT-001")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
		assert.Equal(t, "EXT-001", found.ExternalID)
		assert.Equal(t, "amul-butter-500g", found.Slug)
		assert.Equal(t, 1, found.SyncVersion)
		assert.True(t, found.IsInStock)
	})

	t.Run("returns ErrNotFound for unknown external ID", func(t *testing.T) {
		_, err := repo.FindByExternalID(ctx, tenantID, "EXT-MISSING")
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("does not leak items across tenants", func(t *testing.T) {
		otherTenant := uuid.New()
		_, err := repo.FindByExternalID(ctx, otherTenant, "EXT-001")
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("same external ID is allowed in two tenants", func(t *testing.T) {
		otherTenant := uuid.New()
		item, err := catalog.NewItemFromSync(otherTenant, "EXT-001", syncFields("Other Butter", 300, 1), time.Now())
		require.NoError(t, err)
		assert.NoError(t, repo.Save(ctx, item))
	})
}

func TestGormCatalogItemRepository_CountMutatedSince(t *testing.T) {
	db := setupCatalogItemTestDB(t)
	repo := NewGormCatalogItemRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	now := time.Now()

	// Two items synced recently, one stale
	for i, age := range []time.Duration{time.Hour, 2 * time.Hour, 48 * time.Hour} {
		item, err := catalog.NewItemFromSync(tenantID, uuid.NewString(), syncFields("Item", 10, i), now.Add(-age))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, item))
	}

	count, err := repo.CountMutatedSince(ctx, tenantID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := repo.CountForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestGormCatalogItemRepository_FindAllForTenant(t *testing.T) {
	db := setupCatalogItemTestDB(t)
	repo := NewGormCatalogItemRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	for i := 0; i < 5; i++ {
		item, err := catalog.NewItemFromSync(tenantID, uuid.NewString(), syncFields("Item", 10, i), time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, item))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 3

	page, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	filter.Page = 2
	page, err = repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestGormCatalogItemRepository_UpdatePreservesIdentity(t *testing.T) {
	db := setupCatalogItemTestDB(t)
	repo := NewGormCatalogItemRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	item, err := catalog.NewItemFromSync(tenantID, "EXT-010", syncFields("Tata Salt 1kg", 28, 40), time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, item))

	require.NoError(t, item.ApplySync(syncFields("Tata Salt 1kg", 30, 35), time.Now()))
	require.NoError(t, repo.Save(ctx, item))

	found, err := repo.FindByExternalID(ctx, tenantID, "EXT-010")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, 2, found.SyncVersion)
	assert.Equal(t, 35, found.Quantity)
}
