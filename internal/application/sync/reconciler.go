package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// Outcome classifies what one record did to the catalog
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeUnchanged
)

// Reconciler applies one sync record to the catalog. It owns the
// create-or-update decision and the checksum gate; batch concerns
// (ordering, error isolation, auditing) live in the Service.
type Reconciler struct {
	items catalog.Repository
}

// NewReconciler creates a new Reconciler
func NewReconciler(items catalog.Repository) *Reconciler {
	return &Reconciler{items: items}
}

// Reconcile applies a single record under the given sync kind and returns
// the touched item's ID so the caller can invalidate its cache entries.
//
// Delta compares the incoming fingerprint against the stored checksum and
// skips the write when they match, leaving the row byte-identical. Full
// writes unconditionally. Inventory-only touches quantity and the stock
// flag; when the item does not exist yet it falls back to a full create
// so a racing first sync cannot strand inventory updates.
func (r *Reconciler) Reconcile(ctx context.Context, tenantID uuid.UUID, rec syncdomain.Record, kind syncdomain.Kind, now time.Time) (Outcome, uuid.UUID, error) {
	if err := rec.Validate(); err != nil {
		return OutcomeUnchanged, uuid.Nil, err
	}

	item, err := r.items.FindByExternalID(ctx, tenantID, rec.ExternalID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return OutcomeUnchanged, uuid.Nil, err
		}
		return r.create(ctx, tenantID, rec, now)
	}

	switch kind {
	case syncdomain.KindInventoryOnly:
		item.ApplyInventory(rec.Quantity, now)
	case syncdomain.KindDelta:
		if item.ChecksumMatches(fieldsFromRecord(rec)) {
			return OutcomeUnchanged, item.ID, nil
		}
		if err := item.ApplySync(fieldsFromRecord(rec), now); err != nil {
			return OutcomeUnchanged, uuid.Nil, err
		}
	default:
		if err := item.ApplySync(fieldsFromRecord(rec), now); err != nil {
			return OutcomeUnchanged, uuid.Nil, err
		}
	}

	if err := r.items.Save(ctx, item); err != nil {
		return OutcomeUnchanged, uuid.Nil, err
	}
	return OutcomeUpdated, item.ID, nil
}

func (r *Reconciler) create(ctx context.Context, tenantID uuid.UUID, rec syncdomain.Record, now time.Time) (Outcome, uuid.UUID, error) {
	item, err := catalog.NewItemFromSync(tenantID, rec.ExternalID, fieldsFromRecord(rec), now)
	if err != nil {
		return OutcomeUnchanged, uuid.Nil, err
	}
	if err := r.items.Save(ctx, item); err != nil {
		return OutcomeUnchanged, uuid.Nil, err
	}
	return OutcomeCreated, item.ID, nil
}

func fieldsFromRecord(rec syncdomain.Record) catalog.SyncFields {
	return catalog.SyncFields{
		Name:         rec.Name,
		Description:  rec.Description,
		MRP:          rec.MRP,
		SellingPrice: rec.SellingPrice,
		Quantity:     rec.Quantity,
		Unit:         rec.Unit,
		SKU:          rec.SKU,
		Barcode:      rec.Barcode,
		HSNCode:      rec.HSNCode,
		GSTPercent:   rec.GSTPercent,
	}
}
