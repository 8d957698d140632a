package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// BatchResult is the outcome of one sync batch, mirrored back to the agent.
// Processed counts every record received, including the failed ones.
type BatchResult struct {
	SyncID                uuid.UUID
	Status                syncdomain.Status
	Processed             int
	Created               int
	Updated               int
	Unchanged             int
	Failed                int
	Errors                []syncdomain.RecordError
	DurationSeconds       float64
	NextRecommendedSyncAt time.Time
}

// Service orchestrates sync batches: validation, per-record reconciliation
// with error isolation, the audit trail, cache invalidation and the
// post-batch tier check.
type Service struct {
	stores     store.Repository
	runs       syncdomain.RunRepository
	reconciler *Reconciler
	tiers      *TierService
	cache      cache.Store
	cfg        config.SyncConfig

	// now is swappable so tests can control the batch clock
	now func() time.Time
}

// NewService creates a new sync Service. tiers may be nil when post-batch
// tier evaluation is disabled.
func NewService(
	stores store.Repository,
	runs syncdomain.RunRepository,
	reconciler *Reconciler,
	tiers *TierService,
	cacheStore cache.Store,
	cfg config.SyncConfig,
) *Service {
	return &Service{
		stores:     stores,
		runs:       runs,
		reconciler: reconciler,
		tiers:      tiers,
		cache:      cacheStore,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ProcessBatch runs one sync batch for a store. Batch-level violations
// (inactive store, unknown kind, empty or oversized batch) reject the
// whole request before any record is touched; everything after that is
// isolated per record.
func (s *Service) ProcessBatch(ctx context.Context, st *store.Store, kind syncdomain.Kind, records []syncdomain.Record) (*BatchResult, error) {
	if !st.IsActive {
		return nil, shared.ErrStoreInactive
	}
	if !kind.IsValid() {
		return nil, shared.ErrInvalidSyncKind
	}
	if len(records) == 0 {
		return nil, shared.ErrEmptyBatch
	}
	if len(records) > s.cfg.MaxBatchSize {
		return nil, shared.ErrBatchTooLarge
	}

	log := logger.FromContext(ctx)
	startedAt := s.now()
	deadline := startedAt.Add(s.cfg.BatchTimeout)
	run := syncdomain.NewRun(st.ID, kind, len(records), startedAt)

	var (
		created, updated, unchanged, failed int
		recordErrs                          []syncdomain.RecordError
		touched                             []uuid.UUID
		timedOut                            bool
	)

	for i := range records {
		if s.now().After(deadline) {
			timedOut = true
			failed += len(records) - i
			recordErrs = append(recordErrs, syncdomain.RecordError{
				ExternalID: records[i].ExternalID,
				Error:      fmt.Sprintf("batch budget exhausted, %d records not processed", len(records)-i),
			})
			break
		}

		outcome, itemID, err := s.reconciler.Reconcile(ctx, st.ID, records[i], kind, s.now())
		if err != nil {
			failed++
			recordErrs = append(recordErrs, syncdomain.RecordError{
				ExternalID: records[i].ExternalID,
				Error:      err.Error(),
			})
			continue
		}

		switch outcome {
		case OutcomeCreated:
			created++
			touched = append(touched, itemID)
		case OutcomeUpdated:
			updated++
			touched = append(touched, itemID)
		case OutcomeUnchanged:
			unchanged++
		}
	}

	completedAt := s.now()
	if timedOut {
		run.FailWithProgress(created, updated, failed, "batch budget exhausted", completedAt)
	} else {
		run.Finalize(created, updated, failed, recordErrs, completedAt)
	}

	if err := s.runs.Save(ctx, run); err != nil {
		// The catalog writes already landed; losing the audit row is worth
		// a loud log but not a failed response.
		log.Error("Failed to persist sync run", zap.Error(err))
	}

	// Advance the watermark unless nothing at all made it through
	if created+updated+unchanged > 0 {
		st.RecordSync(completedAt)
		if err := s.stores.Save(ctx, st); err != nil {
			log.Error("Failed to update store sync watermark", zap.Error(err))
		}
	}

	if created+updated > 0 {
		if kind == syncdomain.KindInventoryOnly {
			s.invalidateInventory(ctx, st.ID, touched, log)
		} else {
			s.invalidateCatalog(ctx, st.ID, log)
		}
	}

	if s.tiers != nil {
		if _, err := s.tiers.EvaluateStore(ctx, st); err != nil {
			log.Warn("Post-batch tier evaluation failed", zap.Error(err))
		}
	}

	log.Info("Sync batch finished",
		zap.String("sync_id", run.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("status", string(run.Status)),
		zap.Int("received", len(records)),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("unchanged", unchanged),
		zap.Int("failed", failed),
		zap.Float64("duration_seconds", run.DurationSeconds),
	)

	return &BatchResult{
		SyncID:                run.ID,
		Status:                run.Status,
		Processed:             len(records),
		Created:               created,
		Updated:               updated,
		Unchanged:             unchanged,
		Failed:                failed,
		Errors:                recordErrs,
		DurationSeconds:       run.DurationSeconds,
		NextRecommendedSyncAt: st.NextRecommendedSyncAt(completedAt),
	}, nil
}

// LatestRun returns the most recent run for a store, or nil when the
// store has never synced.
func (s *Service) LatestRun(ctx context.Context, tenantID uuid.UUID) (*syncdomain.Run, error) {
	run, err := s.runs.FindLatestForTenant(ctx, tenantID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

// RecentRuns returns the newest runs for a store, for the sync log view
func (s *Service) RecentRuns(ctx context.Context, tenantID uuid.UUID, limit int) ([]syncdomain.Run, error) {
	if limit <= 0 || limit > 100 {
		limit = s.cfg.DefaultPageLen
	}
	return s.runs.FindRecentForTenant(ctx, tenantID, limit)
}

// invalidateCatalog drops cached catalog entries after writes. Best
// effort: storefront reads repopulate the cache on the next request.
func (s *Service) invalidateCatalog(ctx context.Context, tenantID uuid.UUID, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.CatalogPattern(tenantID.String())); err != nil {
		log.Warn("Catalog cache invalidation failed",
			zap.String("store_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

// invalidateInventory drops only the touched items' cached entries.
// The inventory fast path trades broad invalidation for latency:
// untouched items keep their cache entries.
func (s *Service) invalidateInventory(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID, log *zap.Logger) {
	if s.cache == nil || len(itemIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(itemIDs)*2)
	for _, id := range itemIDs {
		keys = append(keys,
			cache.CatalogKey(tenantID.String(), id.String()),
			cache.InventoryKey(tenantID.String(), id.String()),
		)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn("Inventory cache invalidation failed",
			zap.String("store_id", tenantID.String()),
			zap.Int("items", len(itemIDs)),
			zap.Error(err),
		)
	}
}

// SetClock replaces the service's clock. Test helper only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
