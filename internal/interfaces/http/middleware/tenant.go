package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appstore "github.com/storesync/backend/internal/application/store"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// StoreKey is the gin context key holding the resolved *store.Store
	StoreKey = "store"
	// StoreHeaderKey carries an explicit store selection
	StoreHeaderKey = "X-Store-ID"
	// StoreQueryKey is the query-parameter fallback for the store selection
	StoreQueryKey = "store_id"
)

// TenantConfig holds tenant resolution settings
type TenantConfig struct {
	Resolver *appstore.Resolver
	// PlatformHosts are hosts that are NOT custom store domains (the
	// platform's own domains); requests on them fall through to
	// header/query resolution.
	PlatformHosts []string
	// DefaultFallback enables the default-store fallback for requests
	// carrying no tenant signal. Public storefront routes want this;
	// dashboard routes do not.
	DefaultFallback bool
}

// Tenant resolves which store a request addresses.
//
// Precedence: custom domain, then the X-Store-ID header, then the
// store_id query parameter, then (for public routes) the default store.
// An explicit signal that resolves to nothing is a 404; it never falls
// through to a weaker signal, otherwise a typo in a store ID would
// silently serve another store's catalog.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	platformHosts := make(map[string]struct{}, len(cfg.PlatformHosts))
	for _, h := range cfg.PlatformHosts {
		platformHosts[strings.ToLower(h)] = struct{}{}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Priority 1: custom domain
		host := requestHost(c.Request.Host)
		if _, isPlatform := platformHosts[host]; !isPlatform && host != "" {
			st, err := cfg.Resolver.ByDomain(ctx, host)
			if err == nil {
				attachStore(c, st)
				return
			}
			if err != shared.ErrNotFound {
				respondTenantError(c, http.StatusServiceUnavailable, dto.ErrCodeInfrastructure, "Store lookup failed")
				return
			}
			// Unknown domains fall through: the platform fronts arbitrary
			// hosts behind load balancers and health checkers
		}

		// Priority 2: explicit header
		if id := c.GetHeader(StoreHeaderKey); id != "" {
			resolveByID(c, cfg.Resolver, id)
			return
		}

		// Priority 3: query parameter
		if id := c.Query(StoreQueryKey); id != "" {
			resolveByID(c, cfg.Resolver, id)
			return
		}

		// Priority 4: default store for public traffic
		if cfg.DefaultFallback {
			st, err := cfg.Resolver.Default(ctx)
			if err != nil {
				respondTenantError(c, http.StatusNotFound, dto.ErrCodeNotFound, "No store available")
				return
			}
			attachStore(c, st)
			return
		}

		respondTenantError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Store identification required")
	}
}

func resolveByID(c *gin.Context, resolver *appstore.Resolver, id string) {
	if _, err := uuid.Parse(id); err != nil {
		respondTenantError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid store ID format")
		return
	}

	st, err := resolver.ByID(c.Request.Context(), id)
	if err != nil {
		if err == shared.ErrNotFound {
			respondTenantError(c, http.StatusNotFound, dto.ErrCodeNotFound, "Store not found")
			return
		}
		respondTenantError(c, http.StatusServiceUnavailable, dto.ErrCodeInfrastructure, "Store lookup failed")
		return
	}
	attachStore(c, st)
}

// attachStore stores the resolved tenant and continues the chain.
// Suspended stores are rejected here so no downstream handler needs to
// re-check.
func attachStore(c *gin.Context, st *store.Store) {
	if !st.IsActive {
		respondTenantError(c, http.StatusForbidden, dto.ErrCodeStoreInactive, "Store is not active")
		return
	}

	c.Set(StoreKey, st)

	ctx := c.Request.Context()
	ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), st.ID.String())
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}

// GetStore retrieves the resolved store from gin.Context
func GetStore(c *gin.Context) (*store.Store, bool) {
	v, exists := c.Get(StoreKey)
	if !exists {
		return nil, false
	}
	st, ok := v.(*store.Store)
	return st, ok
}

// MustGetStore retrieves the resolved store or panics. Only for handlers
// mounted behind the tenant middleware.
func MustGetStore(c *gin.Context) *store.Store {
	st, ok := GetStore(c)
	if !ok {
		logger.FromContext(c.Request.Context()).Error("Store missing from context",
			zap.String("path", c.Request.URL.Path),
		)
		panic("store not found in context")
	}
	return st
}

func requestHost(hostport string) string {
	host := hostport
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.ToLower(host)
}

func respondTenantError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDHeader)))
}
