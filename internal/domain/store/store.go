package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
)

// Store represents an independent customer account (tenant) with its own
// isolated catalog. The sync tier and interval are mutated only by tier
// evaluation; the sync secret is immutable after onboarding.
type Store struct {
	shared.BaseEntity
	ExternalID          string `gorm:"type:varchar(100);uniqueIndex"`
	Name                string `gorm:"type:varchar(200);not null"`
	Slug                string `gorm:"type:varchar(200);uniqueIndex"`
	Domain              string `gorm:"type:varchar(255);index"`
	SyncSecret          string `gorm:"type:varchar(100);uniqueIndex;not null"`
	SyncTier            Tier   `gorm:"not null;default:3"`
	SyncIntervalMinutes int    `gorm:"not null;default:60"`
	LastSyncAt          *time.Time
	IsActive            bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store with a generated sync secret.
// New stores start in the default (low-activity) tier until the first
// tier evaluation runs.
func NewStore(name, externalID string) (*Store, error) {
	if err := validateStoreName(name); err != nil {
		return nil, err
	}

	tier := DefaultTier
	return &Store{
		BaseEntity:          shared.NewBaseEntity(),
		ExternalID:          externalID,
		Name:                name,
		SyncSecret:          newSyncSecret(),
		SyncTier:            tier,
		SyncIntervalMinutes: tier.IntervalMinutes(),
		IsActive:            true,
	}, nil
}

// newSyncSecret generates an opaque per-store sync credential.
// Two UUIDs give 256 bits which is plenty for a bearer-style secret.
func newSyncSecret() string {
	return uuid.NewString() + uuid.NewString()
}

// AssignTier moves the store to the given tier and its matching interval.
// Returns true when the tier actually changed, so callers can skip
// persistence and logging on no-op evaluations.
func (s *Store) AssignTier(tier Tier) bool {
	if s.SyncTier == tier {
		return false
	}
	s.SyncTier = tier
	s.SyncIntervalMinutes = tier.IntervalMinutes()
	s.UpdatedAt = time.Now()
	return true
}

// RecordSync advances the last-sync watermark
func (s *Store) RecordSync(at time.Time) {
	s.LastSyncAt = &at
	s.UpdatedAt = time.Now()
}

// Deactivate suspends the store. Suspended stores are kept, never deleted.
func (s *Store) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Store is already inactive")
	}
	s.IsActive = false
	s.UpdatedAt = time.Now()
	return nil
}

// Activate re-enables a suspended store
func (s *Store) Activate() error {
	if s.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Store is already active")
	}
	s.IsActive = true
	s.UpdatedAt = time.Now()
	return nil
}

// NextRecommendedSyncAt returns when the sync agent should call back,
// based on the store's current tier.
func (s *Store) NextRecommendedSyncAt(now time.Time) time.Time {
	return now.Add(time.Duration(s.SyncIntervalMinutes) * time.Minute)
}

func validateStoreName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 200 characters")
	}
	return nil
}
