package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rcssa/match-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError_NonDriverErrors(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.ErrorIs(t, MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, MapError(context.DeadlineExceeded), store.ErrUnavailable)
	assert.ErrorIs(t, MapError(sql.ErrConnDone), store.ErrUnavailable)
	assert.ErrorIs(t, MapError(store.ErrConflict), store.ErrConflict)

	plain := errors.New("plain")
	assert.Same(t, plain, MapError(plain))
}
