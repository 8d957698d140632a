package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/ratelimit"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// Endpoint classes for rate-limit bucketing
const (
	ClassSync       = "sync"
	ClassStorefront = "storefront"
	ClassDashboard  = "dashboard"
)

// SyncRateLimit limits sync ingress per store. The budget follows the
// store's activity tier, so busy stores syncing every 5 minutes get the
// headroom their schedule needs. Must run after SyncAuth.
func SyncRateLimit(limiter *ratelimit.Limiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		st := MustGetStore(c)
		limit := cfg.SyncBudgetForTier(int(st.SyncTier))
		decide(c, limiter, st.ID.String(), ClassSync, limit, cfg.Window)
	}
}

// StorefrontRateLimit limits public catalog reads per client IP
func StorefrontRateLimit(limiter *ratelimit.Limiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		decide(c, limiter, c.ClientIP(), ClassStorefront, cfg.Storefront, cfg.Window)
	}
}

// DashboardRateLimit limits dashboard traffic per store. Must run after
// the tenant middleware.
func DashboardRateLimit(limiter *ratelimit.Limiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		st := MustGetStore(c)
		decide(c, limiter, st.ID.String(), ClassDashboard, cfg.Dashboard, cfg.Window)
	}
}

func decide(c *gin.Context, limiter *ratelimit.Limiter, identifier, class string, limit int, window time.Duration) {
	d := limiter.Allow(c.Request.Context(), identifier, class, limit, window)

	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if !d.Allowed {
		retryAfter := int(d.RetryAfter(time.Now()).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		h.Set("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited, "Too many requests", c.GetString(RequestIDHeader)))
		return
	}

	c.Next()
}
