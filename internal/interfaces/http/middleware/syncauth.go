package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appstore "github.com/storesync/backend/internal/application/store"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SyncSecretHeader carries the per-store sync agent credential
const SyncSecretHeader = "X-Sync-Secret"

// SyncAuth authenticates sync agents by their store secret. The secret
// alone picks the store; when the request also carries an explicit store
// signal (header or query) that disagrees with the secret's store, the
// request is rejected rather than silently writing into the secret's
// store.
func SyncAuth(resolver *appstore.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader(SyncSecretHeader)
		if secret == "" {
			respondTenantError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Sync secret required")
			return
		}

		st, err := resolver.BySyncSecret(c.Request.Context(), secret)
		if err != nil {
			if err == shared.ErrNotFound {
				logger.FromContext(c.Request.Context()).Warn("Sync auth failed",
					zap.String("remote_addr", c.ClientIP()),
				)
				respondTenantError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid sync secret")
				return
			}
			respondTenantError(c, http.StatusServiceUnavailable, dto.ErrCodeInfrastructure, "Store lookup failed")
			return
		}

		if claimed := c.GetHeader(StoreHeaderKey); claimed != "" && claimed != st.ID.String() {
			respondTenantError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Sync secret does not belong to the requested store")
			return
		}

		attachStore(c, st)
	}
}
