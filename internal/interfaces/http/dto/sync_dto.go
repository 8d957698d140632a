package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/sync"
)

// SyncRecordRequest is one product record inside a sync batch. Prices are
// JSON numbers and land in decimals untouched; free-text fields are
// optional and size-capped at the database layer.
type SyncRecordRequest struct {
	ExternalID   string          `json:"externalId" binding:"required,max=100"`
	Name         string          `json:"name" binding:"required,max=500"`
	Description  string          `json:"description"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int             `json:"quantity"`
	Unit         string          `json:"unit" binding:"omitempty,max=20"`
	SKU          string          `json:"sku" binding:"omitempty,max=100"`
	Barcode      string          `json:"barcode" binding:"omitempty,max=50"`
	HSNCode      string          `json:"hsnCode" binding:"omitempty,max=20"`
	GSTPercent   decimal.Decimal `json:"gstPercent"`
	UpdatedAt    *time.Time      `json:"updatedAt"`
}

// SyncBatchRequest is the sync ingress payload. The tenant the agent
// claims to sync for must match the store its secret resolved to; the
// handler rejects the whole batch on a mismatch. The authoritative batch
// size limit is enforced by the sync service from configuration.
type SyncBatchRequest struct {
	TenantID  string              `json:"tenantId" binding:"required,uuid"`
	SyncKind  string              `json:"syncKind" binding:"required"`
	Timestamp *time.Time          `json:"timestamp"`
	Records   []SyncRecordRequest `json:"records" binding:"required,dive"`
}

// ToRecords converts the wire records to domain records
func (r *SyncBatchRequest) ToRecords() []sync.Record {
	records := make([]sync.Record, 0, len(r.Records))
	for _, rec := range r.Records {
		records = append(records, sync.Record{
			ExternalID:   rec.ExternalID,
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
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	return records
}

// SyncBatchResponse mirrors the batch outcome back to the sync agent.
// Processed counts every record received, failures included.
type SyncBatchResponse struct {
	SyncID                string             `json:"syncId"`
	Status                string             `json:"status"`
	Processed             int                `json:"processed"`
	Created               int                `json:"created"`
	Updated               int                `json:"updated"`
	Unchanged             int                `json:"unchanged"`
	Failed                int                `json:"failed"`
	Errors                []sync.RecordError `json:"errors,omitempty"`
	DurationSeconds       float64            `json:"durationSeconds"`
	NextRecommendedSyncAt time.Time          `json:"nextRecommendedSyncAt"`
}

// SyncRunResponse is one audit entry in the sync log
type SyncRunResponse struct {
	SyncID          string             `json:"syncId"`
	Kind            string             `json:"kind"`
	Status          string             `json:"status"`
	RecordsReceived int                `json:"recordsReceived"`
	RecordsCreated  int                `json:"recordsCreated"`
	RecordsUpdated  int                `json:"recordsUpdated"`
	RecordsFailed   int                `json:"recordsFailed"`
	DurationSeconds float64            `json:"durationSeconds"`
	StartedAt       time.Time          `json:"startedAt"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
	Errors          []sync.RecordError `json:"errors,omitempty"`
}

// NewSyncRunResponse maps a domain run to its wire form
func NewSyncRunResponse(run *sync.Run) SyncRunResponse {
	return SyncRunResponse{
		SyncID:          run.ID.String(),
		Kind:            string(run.Kind),
		Status:          string(run.Status),
		RecordsReceived: run.RecordsReceived,
		RecordsCreated:  run.RecordsCreated,
		RecordsUpdated:  run.RecordsUpdated,
		RecordsFailed:   run.RecordsFailed,
		DurationSeconds: run.DurationSeconds,
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
		Errors:          run.RecordErrors(),
	}
}

// SyncStatusResponse summarises a store's sync health for the dashboard
type SyncStatusResponse struct {
	StoreID             string           `json:"storeId"`
	SyncTier            int              `json:"syncTier"`
	SyncIntervalMinutes int              `json:"syncIntervalMinutes"`
	LastSyncAt          *time.Time       `json:"lastSyncAt,omitempty"`
	LastRun             *SyncRunResponse `json:"lastRun,omitempty"`
}
