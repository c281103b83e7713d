package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/store"
	"github.com/rcssa/match-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Harness {
		s := NewProfileStore()
		return storetest.Harness{
			Store: s,
			Delete: func(t *testing.T, id uuid.UUID) {
				require.True(t, s.Delete(id), "profile %s should exist", id)
			},
			SetMatchedWith: func(t *testing.T, id, partner uuid.UUID) {
				s.mu.Lock()
				defer s.mu.Unlock()
				p, ok := s.profiles[id]
				require.True(t, ok)
				p.MatchWith(partner, s.now())
			},
		}
	})
}

func TestProfileStore_CreateRejectsMatchedProfile(t *testing.T) {
	s := NewProfileStore()
	p := storetest.NewProfile(t, 1, "Physics")
	p.MatchWith(uuid.New(), p.CreatedAt)

	err := s.Create(context.Background(), p)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Empty(t, s.All())
}

func TestProfileStore_ReturnsCopies(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	p := storetest.NewProfile(t, 1, "Physics")
	require.NoError(t, s.Create(ctx, p))

	p.Name = "mutated after create"
	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Student 1", got.Name)

	got.IsMatched = true
	again, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, again.IsMatched)
}

func TestProfileStore_CanceledContext(t *testing.T) {
	s := NewProfileStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.CommitMatch(ctx, uuid.New(), uuid.New()), context.Canceled)
}

func TestProfileStore_DeleteFreesUniqueKeys(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	p := storetest.NewProfile(t, 1, "Physics")
	require.NoError(t, s.Create(ctx, p))
	require.True(t, s.Delete(p.ID))
	assert.False(t, s.Delete(p.ID))

	again := storetest.NewProfile(t, 2, "Physics")
	again.Email = p.Email
	again.InstitutionalID = p.InstitutionalID
	assert.NoError(t, s.Create(ctx, again))
}
