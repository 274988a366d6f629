package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler implements the Handler interface for testing
type recordingHandler struct {
	mu     sync.Mutex
	events []PipelineEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event PipelineEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestInMemoryEmitter(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(logger)
		err := emitter.EmitEvent(context.Background(), Persisted(uuid.New(), "Octopus"))
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(logger)
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := Skipped(uuid.New(), "Octopus", ReasonStale)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []PipelineEvent{event}, first.events)
		assert.Equal(t, []PipelineEvent{event}, second.events)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), Fallback(uuid.New(), "Octopus", "categorize"))
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1, "later handlers still receive the event")
	})

	t.Run("handler func", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(nil)
		var got Type
		emitter.RegisterHandler(HandlerFunc(func(_ context.Context, e PipelineEvent) error {
			got = e.Type
			return nil
		}))
		require.NoError(t, emitter.EmitEvent(context.Background(), Persisted(uuid.New(), "x")))
		assert.Equal(t, TypeEventPersisted, got)
	})
}

func TestEventConstructors(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	skipped := Skipped(id, "Octopus", ReasonUnsafe)
	assert.Equal(t, TypeArticleSkipped, skipped.Type)
	assert.Equal(t, id, skipped.NewsEventID)
	assert.Equal(t, ReasonUnsafe, skipped.Reason)
	assert.NotEqual(t, uuid.Nil, skipped.ID)
	assert.False(t, skipped.OccurredAt.IsZero())

	fallback := Fallback(id, "Octopus", "verify_facts")
	assert.Equal(t, TypeStageFallback, fallback.Type)
	assert.Equal(t, "verify_facts", fallback.Stage)

	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), fallback))
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := NewLogHandler(logger)

	require.NoError(t, h.HandleEvent(context.Background(), Fallback(uuid.New(), "Octopus", "fun_facts")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pipeline event", entry["msg"])
	assert.Equal(t, "stage_fallback", entry["event_type"])
	assert.Equal(t, "fun_facts", entry["stage"])
	assert.Equal(t, "pipeline_events", entry["component"])
	assert.NotContains(t, entry, "reason")
}
