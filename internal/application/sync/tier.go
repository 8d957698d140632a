package sync

import (
	"context"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"go.uber.org/zap"
)

// TierService re-evaluates store activity tiers. It runs on a schedule
// over all active stores and opportunistically after each sync batch.
// Evaluation is idempotent: unchanged classifications write nothing.
type TierService struct {
	stores   store.Repository
	activity store.ActivityReader
	logger   *zap.Logger
}

// NewTierService creates a new TierService
func NewTierService(stores store.Repository, activity store.ActivityReader, logger *zap.Logger) *TierService {
	return &TierService{
		stores:   stores,
		activity: activity,
		logger:   logger.Named("tier"),
	}
}

// EvaluateStore reclassifies one store from its trailing-24h activity.
// Returns true when the tier actually changed.
func (s *TierService) EvaluateStore(ctx context.Context, st *store.Store) (bool, error) {
	metrics, err := s.activity.ActivityFor(ctx, st.ID)
	if err != nil {
		return false, err
	}

	tier := store.ClassifyTier(metrics)
	if !st.AssignTier(tier) {
		return false, nil
	}

	if err := s.stores.Save(ctx, st); err != nil {
		return false, err
	}

	s.logger.Info("Store tier changed",
		zap.String("store_id", st.ID.String()),
		zap.Int("tier", int(tier)),
		zap.Int("interval_minutes", st.SyncIntervalMinutes),
		zap.Int64("orders_per_day", metrics.OrdersPerDay),
		zap.Int64("mutations_per_day", metrics.CatalogMutationsPerDay),
	)
	return true, nil
}

// EvaluateAll reclassifies every active store. One store failing does not
// stop the sweep; the first error is reported after the rest finish.
func (s *TierService) EvaluateAll(ctx context.Context) error {
	filter := shared.DefaultFilter()
	filter.PageSize = 100
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	var firstErr error
	evaluated, changed := 0, 0

	for page := 1; ; page++ {
		filter.Page = page
		stores, err := s.stores.FindActive(ctx, filter)
		if err != nil {
			return err
		}
		if len(stores) == 0 {
			break
		}

		for i := range stores {
			moved, err := s.EvaluateStore(ctx, &stores[i])
			if err != nil {
				s.logger.Warn("Tier evaluation failed for store",
					zap.String("store_id", stores[i].ID.String()),
					zap.Error(err),
				)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			evaluated++
			if moved {
				changed++
			}
		}

		if len(stores) < filter.PageSize {
			break
		}
	}

	s.logger.Info("Tier evaluation sweep finished",
		zap.Int("evaluated", evaluated),
		zap.Int("changed", changed),
	)
	return firstErr
}
