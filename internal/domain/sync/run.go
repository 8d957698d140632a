package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
)

// Kind identifies the sync mode requested by the agent
type Kind string

const (
	// KindDelta skips records whose checksum matches the stored item
	KindDelta Kind = "delta"
	// KindFull overwrites every record regardless of checksum
	KindFull Kind = "full"
	// KindInventoryOnly updates quantities only, trading fidelity for latency
	KindInventoryOnly Kind = "inventoryOnly"
)

// IsValid reports whether k is a known sync kind
func (k Kind) IsValid() bool {
	return k == KindDelta || k == KindFull || k == KindInventoryOnly
}

// Status summarises the outcome of one sync run
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Run is the audit record of one batch sync execution. It is created when
// the batch starts, finalised exactly once when the batch ends, and
// immutable afterwards.
type Run struct {
	shared.TenantEntity
	Kind            Kind    `gorm:"type:varchar(20);not null"`
	Status          Status  `gorm:"type:varchar(20);not null;index"`
	RecordsReceived int     `gorm:"not null;default:0"`
	RecordsCreated  int     `gorm:"not null;default:0"`
	RecordsUpdated  int     `gorm:"not null;default:0"`
	RecordsFailed   int     `gorm:"not null;default:0"`
	DurationSeconds float64 `gorm:"not null;default:0"`
	StartedAt       time.Time
	CompletedAt     *time.Time
	ErrorDetail     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Run) TableName() string {
	return "sync_runs"
}

// NewRun opens an audit record for a batch that is about to be processed
func NewRun(tenantID uuid.UUID, kind Kind, received int, startedAt time.Time) *Run {
	return &Run{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		Kind:            kind,
		Status:          StatusFailed, // pessimistic until finalised
		RecordsReceived: received,
		StartedAt:       startedAt,
	}
}

// Finalize closes the run with the batch outcome. Status derivation:
// zero failures is success, some progress with failures is partial,
// no progress at all is failed.
func (r *Run) Finalize(created, updated, failed int, errs []RecordError, completedAt time.Time) {
	r.RecordsCreated = created
	r.RecordsUpdated = updated
	r.RecordsFailed = failed
	r.DurationSeconds = completedAt.Sub(r.StartedAt).Seconds()
	r.CompletedAt = &completedAt
	r.UpdatedAt = completedAt

	processed := r.RecordsReceived - failed
	switch {
	case failed == 0:
		r.Status = StatusSuccess
	case processed > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}

	if len(errs) > 0 {
		if detail, err := json.Marshal(errs); err == nil {
			r.ErrorDetail = string(detail)
		}
	}
}

// FailWithProgress closes the run as failed while keeping the counts of
// work that did land before the failure. Used when the batch budget runs
// out mid-way: written items stay written, the run is still a failure.
func (r *Run) FailWithProgress(created, updated, failed int, reason string, completedAt time.Time) {
	r.RecordsCreated = created
	r.RecordsUpdated = updated
	r.RecordsFailed = failed
	r.Fail(reason, completedAt)
}

// Fail closes the run as a total failure with the given reason
func (r *Run) Fail(reason string, completedAt time.Time) {
	r.Status = StatusFailed
	r.DurationSeconds = completedAt.Sub(r.StartedAt).Seconds()
	r.CompletedAt = &completedAt
	r.UpdatedAt = completedAt
	r.ErrorDetail = reason
}

// RecordErrors decodes the per-record error detail, if any
func (r *Run) RecordErrors() []RecordError {
	if r.ErrorDetail == "" {
		return nil
	}
	var errs []RecordError
	if err := json.Unmarshal([]byte(r.ErrorDetail), &errs); err != nil {
		return nil
	}
	return errs
}
