package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the profile service.
const (
	TypeProfileCreated       = "profile.created"
	TypeProfileMatched       = "profile.matched"
	TypeProfileMatchRepaired = "profile.match_repaired"
)

// Event is a profile lifecycle notification.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// ProfileCreated is the payload of TypeProfileCreated.
type ProfileCreated struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Major     string    `json:"major"`
}

// ProfileMatched is the payload of TypeProfileMatched.
type ProfileMatched struct {
	ProfileID uuid.UUID `json:"profile_id"`
	PartnerID uuid.UUID `json:"partner_id"`
	SameMajor bool      `json:"same_major"`
	Attempts  int       `json:"attempts"`
}

// ProfileMatchRepaired is the payload of TypeProfileMatchRepaired.
type ProfileMatchRepaired struct {
	ProfileID       uuid.UUID `json:"profile_id"`
	FormerPartnerID uuid.UUID `json:"former_partner_id"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
