package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appstore "github.com/storesync/backend/internal/application/store"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// StoreHandler serves store lifecycle operations for platform operators
type StoreHandler struct {
	BaseHandler
	service *appstore.Service
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(service *appstore.Service) *StoreHandler {
	return &StoreHandler{service: service}
}

// RegisterRoutes registers store routes on the given group
func (h *StoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stores := rg.Group("/stores")
	{
		stores.POST("", h.Create)
		stores.GET("", h.List)
		stores.GET("/:id", h.Get)
		stores.POST("/:id/deactivate", h.Deactivate)
		stores.POST("/:id/activate", h.Activate)
	}
}

// Create onboards a new store. The response carries the sync secret;
// this is the only time it is ever returned.
func (h *StoreHandler) Create(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid store payload: "+err.Error())
		return
	}

	st, err := h.service.Create(c.Request.Context(), appstore.CreateStoreRequest{
		Name:       req.Name,
		ExternalID: req.ExternalID,
		Slug:       req.Slug,
		Domain:     req.Domain,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.CreatedStoreResponse{
		StoreResponse: dto.NewStoreResponse(st),
		SyncSecret:    st.SyncSecret,
	})
}

// List returns active stores
func (h *StoreHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	stores, err := h.service.List(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.StoreResponse, 0, len(stores))
	for i := range stores {
		out = append(out, dto.NewStoreResponse(&stores[i]))
	}
	h.Success(c, out)
}

// Get returns one store
func (h *StoreHandler) Get(c *gin.Context) {
	id, ok := h.storeID(c)
	if !ok {
		return
	}

	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewStoreResponse(st))
}

// Deactivate suspends a store
func (h *StoreHandler) Deactivate(c *gin.Context) {
	id, ok := h.storeID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate re-enables a suspended store
func (h *StoreHandler) Activate(c *gin.Context) {
	id, ok := h.storeID(c)
	if !ok {
		return
	}

	if err := h.service.Activate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *StoreHandler) storeID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return uuid.Nil, false
	}
	return id, true
}
