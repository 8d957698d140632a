package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
)

// Service handles store lifecycle operations
type Service struct {
	stores   store.Repository
	resolver *Resolver
}

// NewService creates a new store Service
func NewService(stores store.Repository, resolver *Resolver) *Service {
	return &Service{stores: stores, resolver: resolver}
}

// CreateStoreRequest carries the onboarding inputs
type CreateStoreRequest struct {
	Name       string
	ExternalID string
	Slug       string
	Domain     string
}

// Create onboards a new store. The generated sync secret is returned
// exactly once, in the response to this call.
func (s *Service) Create(ctx context.Context, req CreateStoreRequest) (*store.Store, error) {
	st, err := store.NewStore(req.Name, req.ExternalID)
	if err != nil {
		return nil, err
	}
	st.Slug = req.Slug
	st.Domain = req.Domain

	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get fetches a store by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	return s.stores.FindByID(ctx, id)
}

// Deactivate suspends a store and evicts it from the resolver cache
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	st, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := st.Deactivate(); err != nil {
		return err
	}
	if err := s.stores.Save(ctx, st); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, st)
	return nil
}

// Activate re-enables a suspended store
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	st, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := st.Activate(); err != nil {
		return err
	}
	if err := s.stores.Save(ctx, st); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, st)
	return nil
}

// List returns active stores
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	return s.stores.FindActive(ctx, filter)
}
