package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	id := uuid.New()
	event, err := NewEvent(TypeProfileCreated, ProfileCreated{ProfileID: id, Major: "Physics"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeProfileCreated, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var payload ProfileCreated
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, id, payload.ProfileID)
	assert.Equal(t, "Physics", payload.Major)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeProfileCreated, make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	ctx := context.Background()
	event, err := NewEvent(TypeProfileMatched, ProfileMatched{ProfileID: uuid.New(), PartnerID: uuid.New()})
	require.NoError(t, err)

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(ctx, event))
	})

	t.Run("all handlers run and errors are joined", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(slog.Default())
		errFirst := errors.New("first")
		errSecond := errors.New("second")

		var order []string
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			order = append(order, "a")
			return errFirst
		}))
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			order = append(order, "b")
			return errSecond
		}))
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			order = append(order, "c")
			assert.Equal(t, event.ID, e.ID)
			return nil
		}))

		err := emitter.EmitEvent(ctx, event)
		assert.ErrorIs(t, err, errFirst)
		assert.ErrorIs(t, err, errSecond)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("panicking handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		delivered := false
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			panic("audit sink exploded")
		}))
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			delivered = true
			return nil
		}))

		err := emitter.EmitEvent(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit sink exploded")
		assert.True(t, delivered)
	})
}

func TestAuditLogHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := NewAuditLogHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	profileID := uuid.New()
	event, err := NewEvent(TypeProfileMatchRepaired, ProfileMatchRepaired{
		ProfileID:       profileID,
		FormerPartnerID: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit event", entry["msg"])
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, TypeProfileMatchRepaired, entry["event_type"])
	payload, ok := entry["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, profileID.String(), payload["profile_id"])
}

func TestAuditLogHandler_BadPayload(t *testing.T) {
	handler := NewAuditLogHandler(nil)
	err := handler.HandleEvent(context.Background(), &Event{Type: "x", Payload: json.RawMessage(`{`)})
	assert.Error(t, err)
}
