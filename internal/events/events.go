package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened in a PipelineEvent.
type Type string

const (
	// TypeArticleSkipped is emitted when an article is dropped by a gate.
	TypeArticleSkipped Type = "article_skipped"

	// TypeEventPersisted is emitted after a processed event has been saved.
	TypeEventPersisted Type = "event_persisted"

	// TypeStageFallback is emitted when a stage used its safe default.
	TypeStageFallback Type = "stage_fallback"
)

// Skip reasons carried by TypeArticleSkipped events.
const (
	ReasonUnsafe = "unsafe"
	ReasonStale  = "stale"
)

// PipelineEvent describes one thing the pipeline did to one article.
type PipelineEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type Type `json:"type"`

	// NewsEventID is the ID of the article concerned, when it has one
	NewsEventID uuid.UUID `json:"news_event_id"`
	Title       string    `json:"title,omitempty"`

	// Stage names the processing stage for TypeStageFallback
	Stage string `json:"stage,omitempty"`

	// Reason is set for TypeArticleSkipped
	Reason string `json:"reason,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewPipelineEvent creates an event of the given type stamped with the current time.
func NewPipelineEvent(eventType Type, newsEventID uuid.UUID, title string) PipelineEvent {
	return PipelineEvent{
		ID:          uuid.New(),
		Type:        eventType,
		NewsEventID: newsEventID,
		Title:       title,
		OccurredAt:  time.Now().UTC(),
	}
}

// Skipped creates a TypeArticleSkipped event.
func Skipped(newsEventID uuid.UUID, title, reason string) PipelineEvent {
	e := NewPipelineEvent(TypeArticleSkipped, newsEventID, title)
	e.Reason = reason
	return e
}

// Persisted creates a TypeEventPersisted event.
func Persisted(newsEventID uuid.UUID, title string) PipelineEvent {
	return NewPipelineEvent(TypeEventPersisted, newsEventID, title)
}

// Fallback creates a TypeStageFallback event for stage.
func Fallback(newsEventID uuid.UUID, title, stage string) PipelineEvent {
	e := NewPipelineEvent(TypeStageFallback, newsEventID, title)
	e.Stage = stage
	return e
}

// Handler defines an interface for components that can handle events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event PipelineEvent) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, event PipelineEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event PipelineEvent) error {
	return f(ctx, event)
}

// Emitter defines an interface for components that can emit events.
// This allows the pipeline to publish events without direct knowledge of handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event PipelineEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent does nothing.
func (NopEmitter) EmitEvent(context.Context, PipelineEvent) error { return nil }
