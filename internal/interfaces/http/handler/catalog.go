package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/storesync/backend/internal/application/catalog"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// CatalogHandler serves the public storefront catalog reads
type CatalogHandler struct {
	BaseHandler
	service *appcatalog.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *appcatalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes on the given group. The group
// is expected to carry the tenant middleware.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/items", h.List)
		catalog.GET("/items/:id", h.Get)
	}
}

// List returns a page of the store's catalog
func (h *CatalogHandler) List(c *gin.Context) {
	st := middleware.MustGetStore(c)

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

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}

	page, err := h.service.List(c.Request.Context(), st.ID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewCatalogItemResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Get returns one catalog item
func (h *CatalogHandler) Get(c *gin.Context) {
	st := middleware.MustGetStore(c)

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}
	itemID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	item, err := h.service.Get(c.Request.Context(), st.ID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewCatalogItemResponse(item))
}
