package sync

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
)

// Record is one validated product update inside a sync batch. The HTTP
// boundary rejects unknown-shape payloads; by the time a Record reaches
// the reconciler its fields are typed and its optionals explicit.
type Record struct {
	ExternalID   string
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
	UpdatedAt    *time.Time
}

// Validate checks the per-record invariants. Failures here become
// per-record errors, never batch aborts.
func (r Record) Validate() error {
	if r.ExternalID == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "Record is missing an external ID")
	}
	if len(r.ExternalID) > 100 {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot exceed 100 characters")
	}
	if r.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Record is missing a name")
	}
	if r.MRP.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "MRP cannot be negative")
	}
	if r.SellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if r.Quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return nil
}

// RecordError pairs a failed record's external ID with the reason,
// for the per-record error list in the batch response.
type RecordError struct {
	ExternalID string `json:"external_id"`
	Error      string `json:"error"`
}
