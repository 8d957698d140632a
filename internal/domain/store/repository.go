package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
)

// Repository defines persistence operations for stores
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByDomain(ctx context.Context, domain string) (*Store, error)
	FindBySyncSecret(ctx context.Context, secret string) (*Store, error)
	FindDefault(ctx context.Context) (*Store, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Store, error)
	Save(ctx context.Context, store *Store) error
}

// ActivityReader reports trailing-24h activity for tier classification.
// Orders live outside this subsystem, so the reader is the seam between
// the sync engine and whatever records orders.
type ActivityReader interface {
	ActivityFor(ctx context.Context, storeID uuid.UUID) (ActivityMetrics, error)
}
