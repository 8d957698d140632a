package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
)

// Item represents one product in a store's catalog, as mirrored from the
// store's external billing/POS system. Items are created on first sight of
// an external ID and updated in place afterwards; sync never hard-deletes.
type Item struct {
	shared.TenantEntity
	ExternalID      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_items_tenant_external,priority:2"`
	Name            string          `gorm:"type:varchar(500);not null"`
	Slug            string          `gorm:"type:varchar(500);index"`
	Description     string          `gorm:"type:text"`
	MRP             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Quantity        int             `gorm:"not null;default:0"`
	Unit            string          `gorm:"type:varchar(20)"`
	SKU             string          `gorm:"type:varchar(100)"`
	Barcode         string          `gorm:"type:varchar(50);index"`
	HSNCode         string          `gorm:"type:varchar(20)"`
	GSTPercent      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
	IsInStock       bool            `gorm:"not null;default:false"`
	SyncChecksum    string          `gorm:"type:varchar(64)"`
	SyncVersion     int             `gorm:"not null;default:1"`
	LastSyncedAt    time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "catalog_items"
}

// SyncFields carries the sync-writable subset of an item. Everything else on
// Item is either derived (slug, discount, stock flag, checksum) or owned by
// the sync machinery itself.
type SyncFields struct {
	Name         string
	Description  string
	MRP          decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
	Unit         string
	SKU          string
	Barcode      string
	HSNCode      string
	GSTPercent   decimal.Decimal
}

// NewItemFromSync creates an item on first sight of an external ID.
// The checksum is computed from the incoming fields so an immediately
// repeated delta batch is recognised as unchanged.
func NewItemFromSync(tenantID uuid.UUID, externalID string, f SyncFields, now time.Time) (*Item, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if f.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}

	item := &Item{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ExternalID:   externalID,
		IsActive:     true,
		SyncVersion:  1,
	}
	item.applyFields(f, now)
	return item, nil
}

// ApplySync overwrites the sync-writable fields, recomputes derived fields,
// bumps the checksum and increments the version. Safe to repeat: applying
// identical fields twice produces the same row apart from timestamps.
func (i *Item) ApplySync(f SyncFields, now time.Time) error {
	if f.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	i.applyFields(f, now)
	i.SyncVersion++
	return nil
}

// ApplyInventory updates only the quantity and stock flag. The checksum is
// left alone on purpose: the next delta sync that touches price or name
// fields still compares against the full fingerprint.
func (i *Item) ApplyInventory(quantity int, now time.Time) {
	i.Quantity = quantity
	i.IsInStock = quantity > 0
	i.LastSyncedAt = now
	i.UpdatedAt = now
}

// ChecksumMatches reports whether the incoming fields fingerprint to the
// item's stored checksum.
func (i *Item) ChecksumMatches(f SyncFields) bool {
	return i.SyncChecksum == Fingerprint(f)
}

func (i *Item) applyFields(f SyncFields, now time.Time) {
	i.Name = f.Name
	i.Slug = Slugify(f.Name)
	i.Description = f.Description
	i.MRP = f.MRP
	i.SellingPrice = f.SellingPrice
	i.DiscountPercent = DiscountPercent(f.MRP, f.SellingPrice)
	i.Quantity = f.Quantity
	i.Unit = f.Unit
	i.SKU = f.SKU
	i.Barcode = f.Barcode
	i.HSNCode = f.HSNCode
	i.GSTPercent = f.GSTPercent
	i.IsInStock = f.Quantity > 0
	i.SyncChecksum = Fingerprint(f)
	i.LastSyncedAt = now
	i.UpdatedAt = now
}

// DiscountPercent derives the discount from MRP and selling price,
// rounded to two decimal places. Zero MRP yields zero discount.
func DiscountPercent(mrp, sellingPrice decimal.Decimal) decimal.Decimal {
	if !mrp.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return mrp.Sub(sellingPrice).Div(mrp).Mul(hundred).Round(2)
}
