package dto

import (
	"time"

	"github.com/storesync/backend/internal/domain/store"
)

// CreateStoreRequest carries store onboarding inputs
type CreateStoreRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	ExternalID string `json:"externalId" binding:"omitempty,max=100"`
	Slug       string `json:"slug" binding:"omitempty,max=200"`
	Domain     string `json:"domain" binding:"omitempty,fqdn"`
}

// StoreResponse is the store shape exposed to dashboard callers.
// The sync secret is deliberately absent.
type StoreResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Slug                string     `json:"slug,omitempty"`
	Domain              string     `json:"domain,omitempty"`
	SyncTier            int        `json:"syncTier"`
	SyncIntervalMinutes int        `json:"syncIntervalMinutes"`
	LastSyncAt          *time.Time `json:"lastSyncAt,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// CreatedStoreResponse extends StoreResponse with the sync secret,
// returned exactly once at onboarding
type CreatedStoreResponse struct {
	StoreResponse
	SyncSecret string `json:"syncSecret"`
}

// NewStoreResponse maps a domain store to its wire form
func NewStoreResponse(st *store.Store) StoreResponse {
	return StoreResponse{
		ID:                  st.ID.String(),
		Name:                st.Name,
		Slug:                st.Slug,
		Domain:              st.Domain,
		SyncTier:            int(st.SyncTier),
		SyncIntervalMinutes: st.SyncIntervalMinutes,
		LastSyncAt:          st.LastSyncAt,
		IsActive:            st.IsActive,
		CreatedAt:           st.CreatedAt,
	}
}
