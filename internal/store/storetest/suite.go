// Package storetest holds a behavioural test suite that every
// store.ProfileStore implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Harness gives the suite a fresh store plus the out-of-band operations
// that the ProfileStore interface deliberately does not offer.
type Harness struct {
	// Store is an empty store for one test.
	Store store.ProfileStore

	// Delete removes a profile without touching its partner.
	Delete func(t *testing.T, id uuid.UUID)

	// SetMatchedWith forces a one-sided match reference onto a profile.
	SetMatchedWith func(t *testing.T, id, partner uuid.UUID)
}

// Factory builds a Harness for a single test.
type Factory func(t *testing.T) Harness

var baseTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// NewProfile builds a valid unmatched profile. seq orders creation times so
// tie-breaks are deterministic on every backend.
func NewProfile(t *testing.T, seq int, major string) *domain.Profile {
	t.Helper()
	p, err := domain.NewProfile(domain.ProfileInput{
		Name:            fmt.Sprintf("Student %d", seq),
		Email:           fmt.Sprintf("student%d-%s@example.edu", seq, uuid.NewString()[:8]),
		InstitutionalID: fmt.Sprintf("id%d-%s", seq, uuid.NewString()[:8]),
		Major:           major,
		GraduationYear:  2026,
	}, domain.ProfileRules{Majors: domain.NewMajorCatalog(domain.DefaultMajors)})
	require.NoError(t, err)
	p.CreatedAt = baseTime.Add(time.Duration(seq) * time.Second)
	p.UpdatedAt = p.CreatedAt
	return p
}

func mustCreate(t *testing.T, s store.ProfileStore, p *domain.Profile) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), p))
}

func mustGet(t *testing.T, s store.ProfileStore, id uuid.UUID) *domain.Profile {
	t.Helper()
	p, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// Run executes the suite against the store built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, factory(t)) })
	t.Run("CreateDuplicates", func(t *testing.T) { testCreateDuplicates(t, factory(t)) })
	t.Run("GetUnknown", func(t *testing.T) { testGetUnknown(t, factory(t)) })
	t.Run("FindEligiblePartner", func(t *testing.T) { testFindEligiblePartner(t, factory) })
	t.Run("CommitMatch", func(t *testing.T) { testCommitMatch(t, factory(t)) })
	t.Run("CommitMatchRace", func(t *testing.T) { testCommitMatchRace(t, factory(t)) })
	t.Run("RepairOrphan", func(t *testing.T) { testRepairOrphan(t, factory) })
}

func testCreateAndGet(t *testing.T, h Harness) {
	p := NewProfile(t, 1, "Physics")
	mustCreate(t, h.Store, p)

	got := mustGet(t, h.Store, p.ID)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Email, got.Email)
	assert.Equal(t, p.InstitutionalID, got.InstitutionalID)
	assert.Equal(t, "Physics", got.Major)
	assert.Equal(t, 2026, got.GraduationYear)
	assert.False(t, got.IsMatched)
	assert.Nil(t, got.MatchedWith)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt), "created_at round trip: %v vs %v", p.CreatedAt, got.CreatedAt)
}

func testCreateDuplicates(t *testing.T, h Harness) {
	ctx := context.Background()
	first := NewProfile(t, 1, "Biology")
	mustCreate(t, h.Store, first)

	sameEmail := NewProfile(t, 2, "Biology")
	sameEmail.Email = first.Email
	err := h.Store.Create(ctx, sameEmail)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	_, err = h.Store.GetByID(ctx, sameEmail.ID)
	assert.ErrorIs(t, err, store.ErrProfileNotFound, "rejected profile must not be written")

	sameID := NewProfile(t, 3, "Biology")
	sameID.InstitutionalID = first.InstitutionalID
	err = h.Store.Create(ctx, sameID)
	assert.ErrorIs(t, err, store.ErrInstitutionalIDExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func testGetUnknown(t *testing.T, h Harness) {
	_, err := h.Store.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func testFindEligiblePartner(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		h := factory(t)
		_, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		assert.ErrorIs(t, err, store.ErrNoEligiblePartner)
	})

	t.Run("excludes self", func(t *testing.T) {
		h := factory(t)
		p := NewProfile(t, 1, "Physics")
		mustCreate(t, h.Store, p)

		_, err := h.Store.FindEligiblePartner(ctx, p.ID, p.Major)
		assert.ErrorIs(t, err, store.ErrNoEligiblePartner)
	})

	t.Run("prefers same major over older profiles", func(t *testing.T) {
		h := factory(t)
		older := NewProfile(t, 1, "Economics")
		sameMajor := NewProfile(t, 2, "Physics")
		mustCreate(t, h.Store, older)
		mustCreate(t, h.Store, sameMajor)

		got, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		require.NoError(t, err)
		assert.Equal(t, sameMajor.ID, got.ID)
	})

	t.Run("falls back to oldest unmatched", func(t *testing.T) {
		h := factory(t)
		oldest := NewProfile(t, 1, "Economics")
		newer := NewProfile(t, 2, "Biology")
		mustCreate(t, h.Store, oldest)
		mustCreate(t, h.Store, newer)

		got, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		require.NoError(t, err)
		assert.Equal(t, oldest.ID, got.ID)
	})

	t.Run("oldest first within major tier", func(t *testing.T) {
		h := factory(t)
		first := NewProfile(t, 1, "Physics")
		second := NewProfile(t, 2, "Physics")
		mustCreate(t, h.Store, first)
		mustCreate(t, h.Store, second)

		got, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("skips matched profiles", func(t *testing.T) {
		h := factory(t)
		a := NewProfile(t, 1, "Physics")
		b := NewProfile(t, 2, "Physics")
		c := NewProfile(t, 3, "Chemistry")
		mustCreate(t, h.Store, a)
		mustCreate(t, h.Store, b)
		mustCreate(t, h.Store, c)
		require.NoError(t, h.Store.CommitMatch(ctx, a.ID, b.ID))

		got, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.False(t, got.IsMatched)
	})
}

func testCommitMatch(t *testing.T, h Harness) {
	ctx := context.Background()
	a := NewProfile(t, 1, "Physics")
	b := NewProfile(t, 2, "Physics")
	c := NewProfile(t, 3, "Physics")
	for _, p := range []*domain.Profile{a, b, c} {
		mustCreate(t, h.Store, p)
	}

	assert.ErrorIs(t, h.Store.CommitMatch(ctx, a.ID, a.ID), store.ErrSelfMatch)
	assert.ErrorIs(t, h.Store.CommitMatch(ctx, a.ID, uuid.New()), store.ErrProfileNotFound)
	assert.False(t, mustGet(t, h.Store, a.ID).IsMatched, "failed commit must not change a")

	require.NoError(t, h.Store.CommitMatch(ctx, a.ID, b.ID))

	gotA := mustGet(t, h.Store, a.ID)
	gotB := mustGet(t, h.Store, b.ID)
	assert.True(t, gotA.IsMatchedWith(b.ID))
	assert.True(t, gotB.IsMatchedWith(a.ID))
	assert.NoError(t, gotA.Validate())
	assert.NoError(t, gotB.Validate())

	// c may not steal either side of an existing pair
	assert.ErrorIs(t, h.Store.CommitMatch(ctx, c.ID, a.ID), store.ErrConflict)
	assert.ErrorIs(t, h.Store.CommitMatch(ctx, b.ID, c.ID), store.ErrConflict)

	gotC := mustGet(t, h.Store, c.ID)
	assert.False(t, gotC.IsMatched, "conflicting commit must be all-or-nothing")
	assert.Nil(t, gotC.MatchedWith)
	assert.True(t, mustGet(t, h.Store, a.ID).IsMatchedWith(b.ID))
}

func testCommitMatchRace(t *testing.T, h Harness) {
	ctx := context.Background()
	const contenders = 8

	target := NewProfile(t, 0, "Physics")
	mustCreate(t, h.Store, target)
	suitors := make([]*domain.Profile, contenders)
	for i := range suitors {
		suitors[i] = NewProfile(t, i+1, "Physics")
		mustCreate(t, h.Store, suitors[i])
	}

	var (
		mu        sync.Mutex
		winners   []uuid.UUID
		conflicts int
	)
	start := make(chan struct{})
	var g errgroup.Group
	for _, s := range suitors {
		g.Go(func() error {
			<-start
			err := h.Store.CommitMatch(ctx, s.ID, target.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, s.ID)
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	require.Len(t, winners, 1, "exactly one concurrent commit may win")
	assert.Equal(t, contenders-1, conflicts)

	gotTarget := mustGet(t, h.Store, target.ID)
	assert.True(t, gotTarget.IsMatchedWith(winners[0]))
	for _, s := range suitors {
		got := mustGet(t, h.Store, s.ID)
		if s.ID == winners[0] {
			assert.True(t, got.IsMatchedWith(target.ID))
		} else {
			assert.False(t, got.IsMatched)
		}
	}
}

func testRepairOrphan(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("unknown profile", func(t *testing.T) {
		h := factory(t)
		_, err := h.Store.RepairOrphan(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
	})

	t.Run("healthy pair untouched", func(t *testing.T) {
		h := factory(t)
		a := NewProfile(t, 1, "Physics")
		b := NewProfile(t, 2, "Physics")
		mustCreate(t, h.Store, a)
		mustCreate(t, h.Store, b)
		require.NoError(t, h.Store.CommitMatch(ctx, a.ID, b.ID))

		got, err := h.Store.RepairOrphan(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, got.IsMatchedWith(b.ID))
	})

	t.Run("unmatched untouched", func(t *testing.T) {
		h := factory(t)
		a := NewProfile(t, 1, "Physics")
		mustCreate(t, h.Store, a)

		got, err := h.Store.RepairOrphan(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, got.IsMatched)
	})

	t.Run("deleted partner", func(t *testing.T) {
		h := factory(t)
		a := NewProfile(t, 1, "Physics")
		b := NewProfile(t, 2, "Physics")
		mustCreate(t, h.Store, a)
		mustCreate(t, h.Store, b)
		require.NoError(t, h.Store.CommitMatch(ctx, a.ID, b.ID))
		h.Delete(t, b.ID)

		got, err := h.Store.RepairOrphan(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, got.IsMatched)
		assert.Nil(t, got.MatchedWith)

		stored := mustGet(t, h.Store, a.ID)
		assert.False(t, stored.IsMatched)

		// a is eligible again
		cand, err := h.Store.FindEligiblePartner(ctx, uuid.New(), "Physics")
		require.NoError(t, err)
		assert.Equal(t, a.ID, cand.ID)
	})

	t.Run("partner does not reciprocate", func(t *testing.T) {
		h := factory(t)
		a := NewProfile(t, 1, "Physics")
		b := NewProfile(t, 2, "Physics")
		c := NewProfile(t, 3, "Physics")
		for _, p := range []*domain.Profile{a, b, c} {
			mustCreate(t, h.Store, p)
		}
		require.NoError(t, h.Store.CommitMatch(ctx, b.ID, c.ID))
		h.SetMatchedWith(t, a.ID, b.ID)

		got, err := h.Store.RepairOrphan(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, got.IsMatched)
		assert.True(t, mustGet(t, h.Store, b.ID).IsMatchedWith(c.ID), "repair must not touch the partner")
	})
}
