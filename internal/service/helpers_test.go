package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/bookofmonth/bookofmonth-api/internal/mocks"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/memory"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingStore counts Save calls on top of the memory store and can be
// told to fail them.
type recordingStore struct {
	*memory.NewsEventStore

	mu      sync.Mutex
	saved   []domain.NewsEvent
	saveErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{NewsEventStore: memory.NewNewsEventStore()}
}

func (s *recordingStore) Save(ctx context.Context, event domain.NewsEvent) error {
	s.mu.Lock()
	s.saved = append(s.saved, event)
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.NewsEventStore.Save(ctx, event)
}

func (s *recordingStore) Saved() []domain.NewsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.NewsEvent(nil), s.saved...)
}

// eventRecorder collects emitted pipeline events.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.PipelineEvent
}

func (r *eventRecorder) HandleEvent(_ context.Context, e events.PipelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) ofType(t events.Type) []events.PipelineEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.PipelineEvent
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newEmitter() (*events.InMemoryEmitter, *eventRecorder) {
	rec := &eventRecorder{}
	emitter := events.NewInMemoryEmitter(discardLogger())
	emitter.RegisterHandler(rec)
	return emitter, rec
}

func newProcessor(
	t *testing.T,
	gen *mocks.MockContentGenerator,
	photos service.PhotoSearcher,
	videos service.VideoSearcher,
	opts ...service.Option,
) *service.ContentProcessingService {
	t.Helper()

	opts = append([]service.Option{service.WithClock(fixedClock)}, opts...)
	p, err := service.NewContentProcessingService(gen, photos, videos, nil, discardLogger(), opts...)
	require.NoError(t, err)
	return p
}
