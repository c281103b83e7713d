package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMockProfileStore_OverridesAndCounts(t *testing.T) {
	m := NewMockProfileStore()
	m.CommitMatchFn = func(ctx context.Context, a, b uuid.UUID) error {
		return store.ErrConflict
	}

	ctx := context.Background()
	assert.ErrorIs(t, m.CommitMatch(ctx, uuid.New(), uuid.New()), store.ErrConflict)
	assert.ErrorIs(t, m.CommitMatch(ctx, uuid.New(), uuid.New()), store.ErrConflict)

	_, err := m.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrProfileNotFound, "falls through to the in-memory store")

	assert.Equal(t, 2, m.Calls("CommitMatch"))
	assert.Equal(t, 1, m.Calls("GetByID"))
	assert.Zero(t, m.Calls("Create"))
}
