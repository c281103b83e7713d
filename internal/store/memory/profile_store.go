// Package memory provides an in-memory implementation of store.ProfileStore
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/store"
)

// Compile-time contract assertion.
var _ store.ProfileStore = (*ProfileStore)(nil)

// ProfileStore keeps profiles in memory. A single mutex makes every
// operation, including CommitMatch, one critical section.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile
	order    []uuid.UUID // creation order, the tie-break for candidate selection
	byEmail  map[string]uuid.UUID
	byInstID map[string]uuid.UUID
	now      func() time.Time
}

// NewProfileStore creates an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[uuid.UUID]*domain.Profile),
		byEmail:  make(map[string]uuid.UUID),
		byInstID: make(map[string]uuid.UUID),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create implements store.ProfileStore.Create.
func (s *ProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return store.NewStoreError("profile", "create", "invalid profile",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	if profile.IsMatched {
		return store.NewStoreError("profile", "create", "new profiles start unmatched", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ID]; exists {
		return store.ErrDuplicate
	}
	if _, exists := s.byEmail[profile.Email]; exists {
		return store.ErrEmailExists
	}
	if _, exists := s.byInstID[profile.InstitutionalID]; exists {
		return store.ErrInstitutionalIDExists
	}

	s.profiles[profile.ID] = profile.Clone()
	s.order = append(s.order, profile.ID)
	s.byEmail[profile.Email] = profile.ID
	s.byInstID[profile.InstitutionalID] = profile.ID
	return nil
}

// GetByID implements store.ProfileStore.GetByID.
func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return p.Clone(), nil
}

// FindEligiblePartner implements store.ProfileStore.FindEligiblePartner.
func (s *ProfileStore) FindEligiblePartner(
	ctx context.Context,
	excludeID uuid.UUID,
	major string,
) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var fallback *domain.Profile
	for _, id := range s.order {
		p, ok := s.profiles[id]
		if !ok || p.IsMatched || id == excludeID {
			continue
		}
		if p.Major == major {
			return p.Clone(), nil
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback == nil {
		return nil, store.ErrNoEligiblePartner
	}
	return fallback.Clone(), nil
}

// CommitMatch implements store.ProfileStore.CommitMatch.
func (s *ProfileStore) CommitMatch(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return store.ErrSelfMatch
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pa, okA := s.profiles[a]
	pb, okB := s.profiles[b]
	if !okA || !okB {
		return store.ErrProfileNotFound
	}
	if pa.IsMatched || pb.IsMatched {
		return store.ErrConflict
	}

	at := s.now()
	pa.MatchWith(b, at)
	pb.MatchWith(a, at)
	return nil
}

// RepairOrphan implements store.ProfileStore.RepairOrphan.
func (s *ProfileStore) RepairOrphan(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	if p.IsMatched {
		partner, exists := s.profiles[derefID(p.MatchedWith)]
		if !exists || !partner.IsMatchedWith(id) {
			p.ClearMatch(s.now())
		}
	} else if p.MatchedWith != nil {
		p.ClearMatch(s.now())
	}
	return p.Clone(), nil
}

// Delete removes a profile without touching its partner, the way an
// out-of-band cleanup would. Dangling references are left for RepairOrphan.
func (s *ProfileStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return false
	}
	delete(s.profiles, id)
	delete(s.byEmail, p.Email)
	delete(s.byInstID, p.InstitutionalID)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns a snapshot of every profile in creation order.
func (s *ProfileStore) All() []*domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id].Clone())
	}
	return out
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
