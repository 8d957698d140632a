package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

func rateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:    true,
		Window:     time.Minute,
		Tier1Sync:  60,
		Tier2Sync:  30,
		Tier3Sync:  10,
		Tier4Sync:  5,
		Storefront: 120,
		Dashboard:  300,
	}
}

func withStore(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(StoreKey, st)
		c.Next()
	}
}

func TestSyncRateLimit_TierBudget(t *testing.T) {
	shop := newTestStore(t, "Shop", "")
	shop.AssignTier(store.Tier4)

	limiter := ratelimit.NewLimiter(cache.NewMemoryStore(), zap.NewNop())
	cfg := rateLimitConfig()

	router := gin.New()
	router.Use(withStore(shop), SyncRateLimit(limiter, cfg))
	router.POST("/sync/batch", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < cfg.Tier4Sync; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/batch", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/batch", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSyncRateLimit_Headers(t *testing.T) {
	shop := newTestStore(t, "Shop", "")
	shop.AssignTier(store.Tier1)

	limiter := ratelimit.NewLimiter(cache.NewMemoryStore(), zap.NewNop())

	router := gin.New()
	router.Use(withStore(shop), SyncRateLimit(limiter, rateLimitConfig()))
	router.POST("/sync/batch", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/batch", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestStorefrontRateLimit_PerClientIP(t *testing.T) {
	limiter := ratelimit.NewLimiter(cache.NewMemoryStore(), zap.NewNop())
	cfg := rateLimitConfig()
	cfg.Storefront = 2

	router := gin.New()
	router.Use(StorefrontRateLimit(limiter, cfg))
	router.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	// A different client still has its own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestDashboardRateLimit_PerStore(t *testing.T) {
	shop := newTestStore(t, "Shop", "")
	limiter := ratelimit.NewLimiter(cache.NewMemoryStore(), zap.NewNop())
	cfg := rateLimitConfig()
	cfg.Dashboard = 1

	router := gin.New()
	router.Use(withStore(shop), DashboardRateLimit(limiter, cfg))
	router.GET("/dashboard/sync/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/sync/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/sync/status", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	shop := newTestStore(t, "Shop", "")
	limiter := ratelimit.NewLimiter(cache.NewMemoryStore(), zap.NewNop())
	cfg := rateLimitConfig()
	cfg.Enabled = false
	cfg.Dashboard = 1

	router := gin.New()
	router.Use(withStore(shop), DashboardRateLimit(limiter, cfg))
	router.GET("/dashboard/sync/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/sync/status", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
