package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/infrastructure/cache"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db    Pinger
	cache cache.Store
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be
// nil in partial deployments.
func NewHealthHandler(db Pinger, cacheStore cache.Store) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheStore}
}

// RegisterRoutes registers health routes directly on the engine, outside
// the versioned API group, so probes never hit tenant resolution
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Live)
	engine.GET("/ready", h.Ready)
}

// Live reports process liveness
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the backing services are reachable. The cache is
// reported but never fails readiness: the service runs degraded without it.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.cache.Get(ctx, "health:probe"); err != nil && err != cache.ErrCacheMiss {
			checks["cache"] = "unreachable"
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": checks})
}
