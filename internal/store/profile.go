package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
)

// ProfileStore defines the interface for profile persistence and the
// concurrency-safe operations the matching engine relies on.
type ProfileStore interface {
	// Create saves a new, unmatched profile.
	// Returns ErrEmailExists or ErrInstitutionalIDExists (both wrap ErrDuplicate)
	// if either unique key is taken. Nothing is written on conflict.
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByID retrieves a profile by its unique ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// FindEligiblePartner returns one unmatched profile other than excludeID.
	// Profiles with the given major come first; any unmatched profile is the
	// fallback. Within a tier the oldest profile wins (created_at, then id).
	// Returns ErrNoEligiblePartner if no unmatched profile exists.
	FindEligiblePartner(ctx context.Context, excludeID uuid.UUID, major string) (*domain.Profile, error)

	// CommitMatch atomically marks a and b as matched with each other.
	// It succeeds only if both are unmatched at commit time; otherwise it
	// returns ErrConflict and changes nothing.
	// Returns ErrSelfMatch if a == b and ErrProfileNotFound if either is missing.
	CommitMatch(ctx context.Context, a, b uuid.UUID) error

	// RepairOrphan resets the profile to unmatched if its partner no longer
	// exists or no longer points back. It returns the profile's current state.
	// Returns ErrProfileNotFound if the profile itself does not exist.
	RepairOrphan(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}
