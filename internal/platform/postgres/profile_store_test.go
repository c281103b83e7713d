//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/platform/postgres"
	"github.com/rcssa/match-api/internal/store"
	"github.com/rcssa/match-api/internal/store/storetest"
	"github.com/rcssa/match-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresProfileStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Harness {
		h := testdb.OpenHandle(t)
		s := postgres.NewPostgresProfileStore(h, nil)
		return storetest.Harness{
			Store: s,
			Delete: func(t *testing.T, id uuid.UUID) {
				require.NoError(t, s.Delete(context.Background(), id))
			},
			SetMatchedWith: func(t *testing.T, id, partner uuid.UUID) {
				_, err := h.ExecContext(context.Background(),
					`UPDATE profiles SET is_matched = TRUE, matched_with = $2 WHERE id = $1`, id, partner)
				require.NoError(t, err)
			},
		}
	})
}

func TestPostgresProfileStore_SchemaRejectsInconsistentState(t *testing.T) {
	h := testdb.OpenHandle(t)
	s := postgres.NewPostgresProfileStore(h, nil)
	ctx := context.Background()

	p := storetest.NewProfile(t, 1, "Physics")
	require.NoError(t, s.Create(ctx, p))

	_, err := h.ExecContext(ctx, `UPDATE profiles SET is_matched = TRUE WHERE id = $1`, p.ID)
	assert.ErrorIs(t, postgres.MapError(err), store.ErrInvalidEntity)

	_, err = h.ExecContext(ctx,
		`UPDATE profiles SET is_matched = TRUE, matched_with = id WHERE id = $1`, p.ID)
	assert.ErrorIs(t, postgres.MapError(err), store.ErrInvalidEntity)
}

func TestPostgresProfileStore_DeleteUnknown(t *testing.T) {
	h := testdb.OpenHandle(t)
	s := postgres.NewPostgresProfileStore(h, nil)

	err := s.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}
