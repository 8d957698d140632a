package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// SyncHandler serves the sync agent surface: batch ingress, status and logs
type SyncHandler struct {
	BaseHandler
	service *appsync.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service *appsync.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// RegisterAgentRoutes registers the sync agent surface. The group is
// expected to carry SyncAuth and SyncRateLimit middleware.
func (h *SyncHandler) RegisterAgentRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/batch", h.Batch)
		sync.GET("/status", h.Status)
	}
}

// RegisterDashboardRoutes registers the read-only sync views for store
// dashboards. The group is expected to carry the tenant middleware.
func (h *SyncHandler) RegisterDashboardRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/dashboard/sync")
	{
		sync.GET("/status", h.Status)
		sync.GET("/logs", h.Logs)
	}
}

// Batch ingests one sync batch for the authenticated store
func (h *SyncHandler) Batch(c *gin.Context) {
	st := middleware.MustGetStore(c)

	var req dto.SyncBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid sync payload: "+err.Error())
		return
	}

	// The secret picked the store; a body claiming another tenant must
	// never be written into it
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil || tenantID != st.ID {
		h.Error(c, 403, dto.ErrCodeForbidden, "Sync payload tenant does not match the authenticated store")
		return
	}

	result, err := h.service.ProcessBatch(c.Request.Context(), st, syncdomain.Kind(req.SyncKind), req.ToRecords())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.SyncBatchResponse{
		SyncID:                result.SyncID.String(),
		Status:                string(result.Status),
		Processed:             result.Processed,
		Created:               result.Created,
		Updated:               result.Updated,
		Unchanged:             result.Unchanged,
		Failed:                result.Failed,
		Errors:                result.Errors,
		DurationSeconds:       result.DurationSeconds,
		NextRecommendedSyncAt: result.NextRecommendedSyncAt,
	})
}

// Status reports the store's sync health: tier, interval, watermark and
// the most recent run
func (h *SyncHandler) Status(c *gin.Context) {
	st := middleware.MustGetStore(c)

	resp := dto.SyncStatusResponse{
		StoreID:             st.ID.String(),
		SyncTier:            int(st.SyncTier),
		SyncIntervalMinutes: st.SyncIntervalMinutes,
		LastSyncAt:          st.LastSyncAt,
	}

	run, err := h.service.LatestRun(c.Request.Context(), st.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if run != nil {
		lastRun := dto.NewSyncRunResponse(run)
		resp.LastRun = &lastRun
	}

	h.Success(c, resp)
}

// Logs returns the store's recent sync runs, newest first
func (h *SyncHandler) Logs(c *gin.Context) {
	st := middleware.MustGetStore(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.service.RecentRuns(c.Request.Context(), st.ID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.SyncRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, dto.NewSyncRunResponse(&runs[i]))
	}
	h.Success(c, out)
}
