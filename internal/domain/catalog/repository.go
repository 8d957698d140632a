package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
)

// Repository defines persistence operations for catalog items.
// (tenantID, externalID) is the sync identity and carries a unique
// constraint in the backing store.
type Repository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Item, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountMutatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
	Save(ctx context.Context, item *Item) error
}
