package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// TypeWritingResult is the event type emitted when an attempt is submitted.
const TypeWritingResult = "writing_result"

// Event is a message published by the capture pipeline. It carries its data
// as JSON so that handlers do not need to import the publisher's packages.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// WritingResult is the payload of a TypeWritingResult event: the scored
// attempt plus the raw strokes, so that downstream consumers such as the
// spaced repetition scheduler or the assessor can work from it alone.
type WritingResult struct {
	SessionID uuid.UUID `json:"session_id"`
	// AttemptID identifies this submission within the session.
	AttemptID    uuid.UUID            `json:"attempt_id"`
	Character    string               `json:"character"`
	MasteryState domain.MasteryState  `json:"mastery_state"`
	Result       domain.WritingResult `json:"result"`
	Strokes      []domain.Stroke      `json:"strokes"`
	// ExpectedStrokes is the stroke count of the reference character.
	ExpectedStrokes int     `json:"expected_strokes"`
	CanvasWidth     float64 `json:"canvas_width"`
	CanvasHeight    float64 `json:"canvas_height"`
}

// NewWritingResultEvent wraps a writing result in an event.
func NewWritingResultEvent(payload WritingResult) (*Event, error) {
	return NewEvent(TypeWritingResult, payload)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the capture pipeline to publish results without knowing who
// consumes them.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
